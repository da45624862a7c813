package apiclient

import (
	"context"
	"io"
	"strings"

	"github.com/civictrack/civictrack-go/internal/logging"
)

func stringsReader(s string) io.Reader {
	return strings.NewReader(s)
}

func withRequestID(ctx context.Context, id string) context.Context {
	return logging.WithRequestID(ctx, id)
}
