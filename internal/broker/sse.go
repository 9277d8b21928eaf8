package broker

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
)

// scanSSE reads server-sent-event "message" frames from body, decodes each
// frame's data as a TaskResult, and sends it on out. One malformed frame
// logs a warning and does not stop the scan; the loop ends when the
// broker closes the stream or reading from it fails.
func scanSSE(body io.Reader, out chan<- TaskResult) {
	scanner := bufio.NewScanner(body)
	var eventType string
	var eventData bytes.Buffer

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			data := eventData.String()
			if len(data) > 0 && data[len(data)-1] == '\n' {
				data = data[:len(data)-1]
			}
			if len(data) > 0 {
				dispatchFrame(eventType, data, out)
			}
			eventType = "message"
			eventData.Reset()
			continue
		}

		switch {
		case strings.HasPrefix(line, "event:"):
			eventType = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			eventData.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
			eventData.WriteByte('\n')
		case strings.HasPrefix(line, ":"):
			// comment, ignore
		case strings.HasPrefix(line, "id:"), strings.HasPrefix(line, "retry:"):
			// ignored at this layer
		}
	}

	if err := scanner.Err(); err != nil {
		slog.Warn("SSE stream read error", "error", err)
	}
}

func dispatchFrame(eventType, data string, out chan<- TaskResult) {
	if eventType != "" && eventType != "message" {
		return
	}

	var result TaskResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		slog.Warn("discarding malformed task result frame", "error", err)
		return
	}
	out <- result
}
