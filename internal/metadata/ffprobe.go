package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// probeResult is the subset of ffprobe's JSON output we read.
type probeResult struct {
	Streams []probeStream `json:"streams"`
	Format  probeFormat   `json:"format"`
}

type probeStream struct {
	Index     int               `json:"index"`
	CodecType string            `json:"codec_type"`
	Tags      map[string]string `json:"tags"`
}

type probeFormat struct {
	FormatName string            `json:"format_name"`
	Tags       map[string]string `json:"tags"`
}

// FFprobe reads creation_time tags from the container and its streams.
type FFprobe struct {
	Binary  string
	Timeout time.Duration
}

func (FFprobe) Name() string { return "ffprobe" }

// Supports reports true for every path; ffprobe handles any container.
func (FFprobe) Supports(string) bool { return true }

func (p FFprobe) ProbeCreationTimes(ctx context.Context, path string) ([]RawValue, error) {
	res, err := p.inspect(ctx, path)
	if err != nil {
		return nil, err
	}

	var out []RawValue
	if v, ok := creationTime(res.Format.Tags); ok {
		out = append(out, RawValue{Backend: "ffprobe", Field: "format.tags.creation_time", Value: v})
	}
	for i, s := range res.Streams {
		if v, ok := creationTime(s.Tags); ok {
			field := fmt.Sprintf("streams[%d].tags.creation_time", i)
			out = append(out, RawValue{Backend: "ffprobe", Field: field, Value: v})
		}
	}
	return out, nil
}

func (p FFprobe) inspect(ctx context.Context, path string) (probeResult, error) {
	binary := strings.TrimSpace(p.Binary)
	if binary == "" {
		binary = "ffprobe"
	}
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.Output()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return probeResult{}, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return probeResult{}, fmt.Errorf("ffprobe inspect: %w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return probeResult{}, fmt.Errorf("ffprobe inspect: %w", err)
	}

	var res probeResult
	if err := json.Unmarshal(output, &res); err != nil {
		return probeResult{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return res, nil
}

// creationTime looks the tag up case-insensitively; muxers disagree on case.
func creationTime(tags map[string]string) (string, bool) {
	for k, v := range tags {
		if strings.EqualFold(k, "creation_time") && strings.TrimSpace(v) != "" {
			return v, true
		}
	}
	return "", false
}

var _ ContainerProber = FFprobe{}
