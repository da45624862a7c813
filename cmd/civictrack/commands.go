package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/civictrack/civictrack-go/internal/bootstrap"
	"github.com/civictrack/civictrack-go/internal/feedback"
	"github.com/civictrack/civictrack-go/internal/format"
	"github.com/civictrack/civictrack-go/internal/projects/domain"
	"github.com/civictrack/civictrack-go/internal/projects/filter"
)

const usage = `civictrack - browse public works projects

USAGE:
    civictrack <command> [arguments] [flags]

COMMANDS:
    list        List projects       [-status s] [-q text]
    show        Show one project    <id>
    city        List a city's projects  <name>
    stats       Status counts and total budget  [-status s] [-q text]
    feedback    Leave feedback      <projectID> -comment text [-photo path] [-anonymous]
    login       Log in              -token t
    verify-otp  Verify a phone OTP  -phone p -otp code
    me          Show the current user
`

var errUsage = errors.New("invalid usage")

// run dispatches one command. Output goes to out.
func run(ctx context.Context, args []string, svc *bootstrap.Services, out io.Writer) error {
	if len(args) < 1 {
		fmt.Fprint(out, usage)
		return errUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "list":
		return listCommand(ctx, rest, svc, out)
	case "show":
		return showCommand(ctx, rest, svc, out)
	case "city":
		return cityCommand(ctx, rest, svc, out)
	case "stats":
		return statsCommand(ctx, rest, svc, out)
	case "feedback":
		return feedbackCommand(ctx, rest, svc, out)
	case "login":
		return loginCommand(ctx, rest, svc, out)
	case "verify-otp":
		return verifyOTPCommand(ctx, rest, svc, out)
	case "me":
		return meCommand(ctx, svc, out)
	case "help", "-h", "--help":
		fmt.Fprint(out, usage)
		return nil
	default:
		fmt.Fprint(out, usage)
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func newFlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

func criteriaFlags(fs *flag.FlagSet) *filter.Criteria {
	c := &filter.Criteria{}
	fs.StringVar(&c.Status, "status", filter.AllStatuses, "status slug or \"all\"")
	fs.StringVar(&c.Query, "q", "", "search title, department and description")
	return c
}

// positional splits a leading positional argument from the flags after it.
func positional(args []string, what string) (string, []string, error) {
	if len(args) < 1 || strings.HasPrefix(args[0], "-") {
		return "", nil, fmt.Errorf("%w: %s is required", errUsage, what)
	}
	return args[0], args[1:], nil
}

func listCommand(ctx context.Context, args []string, svc *bootstrap.Services, out io.Writer) error {
	fs := newFlagSet("list", out)
	criteria := criteriaFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	all, err := svc.Repository.GetAllProjects(ctx, false)
	if err != nil {
		return err
	}
	printTable(out, filter.Apply(all, *criteria))
	return nil
}

func showCommand(ctx context.Context, args []string, svc *bootstrap.Services, out io.Writer) error {
	id, _, err := positional(args, "project id")
	if err != nil {
		return err
	}
	p, err := svc.Repository.GetProjectByID(ctx, id)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\t%s\n", p.ID)
	fmt.Fprintf(tw, "Title\t%s\n", p.Title)
	fmt.Fprintf(tw, "Status\t%s\n", p.Status.Label())
	fmt.Fprintf(tw, "Progress\t%d%%\n", p.Progress)
	fmt.Fprintf(tw, "Budget\t%s\n", format.Currency(p.Budget))
	fmt.Fprintf(tw, "Department\t%s\n", p.Department)
	fmt.Fprintf(tw, "Contractor\t%s\n", p.Contractor)
	fmt.Fprintf(tw, "Category\t%s\n", p.Category)
	fmt.Fprintf(tw, "Location\t%s\n", locationLine(*p))
	if lat, ok := p.Coordinates.Lat(); ok {
		lng, _ := p.Coordinates.Lng()
		fmt.Fprintf(tw, "Coordinates\t%.5f, %.5f\n", lat, lng)
	}
	if p.StartDate != nil {
		fmt.Fprintf(tw, "Start\t%s\n", format.Date(*p.StartDate))
	}
	if p.ExpectedCompletion != nil {
		fmt.Fprintf(tw, "Expected completion\t%s\n", format.Date(*p.ExpectedCompletion))
	}
	fmt.Fprintf(tw, "Feedback\t%d\n", p.FeedbackCount)
	if p.Description != "" {
		fmt.Fprintf(tw, "\n%s\n", p.Description)
	}
	return tw.Flush()
}

func cityCommand(ctx context.Context, args []string, svc *bootstrap.Services, out io.Writer) error {
	city, _, err := positional(args, "city name")
	if err != nil {
		return err
	}
	items, err := svc.Projects.GetByCity(ctx, city)
	if err != nil {
		return err
	}
	printTable(out, items)
	return nil
}

func statsCommand(ctx context.Context, args []string, svc *bootstrap.Services, out io.Writer) error {
	fs := newFlagSet("stats", out)
	criteria := criteriaFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	all, err := svc.Repository.GetAllProjects(ctx, false)
	if err != nil {
		return err
	}
	stats := filter.Summarize(filter.Apply(all, *criteria))

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Total\t%d\n", stats.Total)
	for _, s := range domain.KnownStatuses {
		fmt.Fprintf(tw, "%s\t%d\n", s.Label(), stats.ByStatus[s])
	}
	for _, s := range slices.Sorted(maps.Keys(stats.ByStatus)) {
		if !s.Known() {
			fmt.Fprintf(tw, "%s\t%d\n", s.Label(), stats.ByStatus[s])
		}
	}
	fmt.Fprintf(tw, "Total budget\t%s (%s)\n", format.Currency(stats.TotalBudget), format.Compact(stats.TotalBudget))
	return tw.Flush()
}

func feedbackCommand(ctx context.Context, args []string, svc *bootstrap.Services, out io.Writer) error {
	projectID, rest, err := positional(args, "project id")
	if err != nil {
		return err
	}
	fs := newFlagSet("feedback", out)
	comment := fs.String("comment", "", "feedback text (max 500 characters)")
	photo := fs.String("photo", "", "path to a photo to attach")
	anonymous := fs.Bool("anonymous", false, "submit without identifying yourself")
	if err := fs.Parse(rest); err != nil {
		return err
	}

	sub := feedback.Submission{ProjectID: projectID, Comment: *comment, IsAnonymous: *anonymous}
	if *photo != "" {
		f, err := os.Open(*photo)
		if err != nil {
			return fmt.Errorf("open photo: %w", err)
		}
		defer f.Close()
		sub.Photos = []feedback.Photo{{Filename: filepath.Base(*photo), Content: f}}
	}

	fb, err := svc.Feedback.Submit(ctx, sub)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Feedback submitted (id %s)\n", fb.ID)
	if fb.ImageURL != nil {
		fmt.Fprintf(out, "Photo: %s\n", *fb.ImageURL)
	}
	return nil
}

func loginCommand(ctx context.Context, args []string, svc *bootstrap.Services, out io.Writer) error {
	fs := newFlagSet("login", out)
	token := fs.String("token", "", "identity provider token")
	if err := fs.Parse(args); err != nil {
		return err
	}
	sess, err := svc.Auth.Login(ctx, *token)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "Logged in")
	if sess.User != nil {
		fmt.Fprintf(out, "User: %s\n", sess.User.ID)
	}
	return nil
}

func verifyOTPCommand(ctx context.Context, args []string, svc *bootstrap.Services, out io.Writer) error {
	fs := newFlagSet("verify-otp", out)
	phone := fs.String("phone", "", "phone number")
	otp := fs.String("otp", "", "6 digit code")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := svc.Auth.VerifyOTP(ctx, *phone, *otp); err != nil {
		return err
	}
	fmt.Fprintln(out, "Phone number verified")
	return nil
}

func meCommand(ctx context.Context, svc *bootstrap.Services, out io.Writer) error {
	u, err := svc.Auth.CurrentUser(ctx)
	if err != nil {
		return err
	}
	name := u.ID
	if u.DisplayName != nil {
		name = *u.DisplayName
	}
	fmt.Fprintf(out, "%s (%s)\n", name, u.ID)
	return nil
}

func printTable(out io.Writer, projects []domain.Project) {
	if len(projects) == 0 {
		fmt.Fprintln(out, "No projects found")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tPROGRESS\tBUDGET\tTITLE")
	for _, p := range projects {
		fmt.Fprintf(tw, "%s\t%s\t%d%%\t%s\t%s\n", p.ID, p.Status.Label(), p.Progress, format.Compact(p.Budget), p.Title)
	}
	_ = tw.Flush()
}

// locationLine shows the location, adding the city only when it says
// something the location does not.
func locationLine(p domain.Project) string {
	loc, city := strings.TrimSpace(p.Location), strings.TrimSpace(p.City)
	switch {
	case loc == "":
		return city
	case city == "" || strings.EqualFold(loc, city):
		return loc
	}
	return loc + ", " + city
}
