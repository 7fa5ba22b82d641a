package logging

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/Graylog2/go-gelf/gelf"
)

// NewGraylogHandler sends JSON records to a Graylog GELF UDP input at address.
// The returned closer releases the UDP socket.
func NewGraylogHandler(address, level string) (slog.Handler, io.Closer, error) {
	w, err := gelf.NewWriter(address)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to graylog at %s: %w", address, err)
	}
	w.Facility = "wheelpath"
	return slog.NewJSONHandler(w, handlerOptions(parseLevel(level))), w, nil
}
