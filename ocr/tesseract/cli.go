package tesseract

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/wudi/coursekit/ocr"
)

// DefaultBinary is the executable looked up on PATH.
const DefaultBinary = "tesseract"

var rotateRe = regexp.MustCompile(`Rotate:\s*(\d+)`)

// CLIEngine runs the tesseract executable once per input, feeding the image
// on stdin and reading text from stdout.
type CLIEngine struct {
	Binary string
}

// NewCLIEngine returns an engine for binary, or DefaultBinary when empty.
func NewCLIEngine(binary string) *CLIEngine {
	if binary == "" {
		binary = DefaultBinary
	}
	return &CLIEngine{Binary: binary}
}

func (e *CLIEngine) Name() string { return "tesseract-cli" }

// Recognize performs OCR on a single image input.
func (e *CLIEngine) Recognize(ctx context.Context, in ocr.Input) (ocr.Result, error) {
	out, err := e.run(ctx, in.Image, recognizeArgs(in)...)
	if err != nil {
		return ocr.Result{InputID: in.ID}, err
	}
	return ocr.Result{
		InputID:   in.ID,
		PlainText: strings.TrimSpace(string(out)),
		Language:  ocr.JoinLanguages(in.Languages),
	}, nil
}

func recognizeArgs(in ocr.Input) []string {
	args := []string{"stdin", "stdout"}
	if len(in.Languages) > 0 {
		args = append(args, "-l", ocr.JoinLanguages(in.Languages))
	}
	if in.EngineMode != ocr.DefaultEngineMode {
		args = append(args, "--oem", strconv.Itoa(in.EngineMode))
	}
	if in.DPI > 0 {
		args = append(args, "--dpi", strconv.Itoa(in.DPI))
	}
	keys := make([]string, 0, len(in.Metadata))
	for k := range in.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if k == ocr.VarPageSegMode {
			args = append(args, "--psm", in.Metadata[k])
			continue
		}
		args = append(args, "-c", k+"="+in.Metadata[k])
	}
	return args
}

// DetectOrientation runs orientation and script detection (--psm 0) and
// returns the reported clockwise rotation.
func (e *CLIEngine) DetectOrientation(ctx context.Context, in ocr.Input) (int, error) {
	out, err := e.run(ctx, in.Image, "stdin", "stdout", "--psm", "0")
	if err != nil {
		return 0, err
	}
	return ParseRotation(string(out))
}

// ParseRotation extracts the "Rotate: N" value from OSD output.
func ParseRotation(osd string) (int, error) {
	m := rotateRe.FindStringSubmatch(osd)
	if m == nil {
		return 0, errors.New("no rotation in orientation output")
	}
	return strconv.Atoi(m[1])
}

// Probe reports the binary's version and installed languages.
func (e *CLIEngine) Probe(ctx context.Context) (ocr.Capabilities, error) {
	caps := ocr.Capabilities{Engine: e.Name(), EngineModes: true}
	if _, err := exec.LookPath(e.Binary); err != nil {
		return caps, fmt.Errorf("%w: %v", ocr.ErrUnavailable, err)
	}
	out, err := e.run(ctx, nil, "--version")
	if err != nil {
		return caps, err
	}
	caps.Version = parseVersion(string(out))
	if langs, err := e.ListLanguages(ctx); err == nil {
		caps.Languages = langs
	}
	return caps, nil
}

// ListLanguages returns the language packs reported by --list-langs.
func (e *CLIEngine) ListLanguages(ctx context.Context) ([]string, error) {
	out, err := e.run(ctx, nil, "--list-langs")
	if err != nil {
		return nil, err
	}
	return parseLanguages(string(out)), nil
}

func parseLanguages(out string) []string {
	var langs []string
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "List of available languages") {
			continue
		}
		langs = append(langs, line)
	}
	return langs
}

func parseVersion(out string) string {
	first, _, _ := strings.Cut(strings.TrimSpace(out), "\n")
	return strings.TrimSpace(strings.TrimPrefix(first, "tesseract"))
}

func (e *CLIEngine) run(ctx context.Context, stdin []byte, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, e.Binary, args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return nil, fmt.Errorf("%w: %v", ocr.ErrUnavailable, err)
		}
		return nil, fmt.Errorf("%s %s: %w: %s", e.Binary, args[0], err, strings.TrimSpace(stderr.String()))
	}
	// Older releases print --version and --list-langs to stderr.
	if stdout.Len() == 0 {
		return stderr.Bytes(), nil
	}
	return stdout.Bytes(), nil
}
