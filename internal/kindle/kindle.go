// Package kindle validates catalog files against delivery policy and
// emails them to a configured Kindle address.
package kindle

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/h2non/filetype"

	"github.com/shelfwise/shelfwise/internal/logger"
	"github.com/shelfwise/shelfwise/internal/metrics"
)

// headerSize is how many leading bytes filetype needs for sniffing.
const headerSize = 261

// Converter is the external format-conversion collaborator. Convert
// returns (success, message, outputPath); outputPath is empty on
// failure. Cleanup releases any temporary artifacts and is always
// called after a delivery, success or failure.
type Converter interface {
	Convert(ctx context.Context, path string) (ok bool, message string, outputPath string)
	Cleanup()
}

// Transport is the external mail collaborator.
type Transport interface {
	Send(ctx context.Context, from, to, subject, body, attachmentPath, displayName string) error
}

// Validation is the outcome of checking a file against delivery policy.
type Validation struct {
	Valid  bool    `json:"valid"`
	Reason string  `json:"reason"`
	SizeMB float64 `json:"size_mb"`
}

// Result is the outcome of a delivery attempt.
type Result struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	FilePath string `json:"file_path"`
}

// Options configures a Sender.
type Options struct {
	From             string
	To               string
	CredentialSet    bool
	SupportedFormats []string
	MaxSizeMB        float64
	SendTimeout      time.Duration
	Converter        Converter
	Transport        Transport
}

// Sender implements the delivery policy: validate, best-effort convert,
// re-validate, transmit.
type Sender struct {
	from          string
	to            string
	credentialSet bool
	formats       map[string]struct{}
	maxSizeMB     float64
	sendTimeout   time.Duration
	converter     Converter
	transport     Transport
}

// New returns a Sender with the given collaborators.
func New(opts Options) *Sender {
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = time.Minute
	}
	s := &Sender{
		from:          opts.From,
		to:            opts.To,
		credentialSet: opts.CredentialSet,
		formats:       make(map[string]struct{}, len(opts.SupportedFormats)),
		maxSizeMB:     opts.MaxSizeMB,
		sendTimeout:   opts.SendTimeout,
		converter:     opts.Converter,
		transport:     opts.Transport,
	}
	for _, f := range opts.SupportedFormats {
		s.formats[strings.ToLower(f)] = struct{}{}
	}
	return s
}

// Validate checks path against the delivery policy: the file must
// exist, carry a supported extension, and fit under the size limit.
func (s *Sender) Validate(path string) Validation {
	info, err := os.Stat(path)
	if err != nil {
		return Validation{Reason: "File does not exist"}
	}

	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := s.formats[ext]; !ok {
		return Validation{Reason: fmt.Sprintf("Unsupported format: %s. Supported formats: %s", ext, s.formatList())}
	}

	sizeMB := math.Round(float64(info.Size())/(1<<20)*100) / 100
	if sizeMB > s.maxSizeMB {
		return Validation{
			Reason: fmt.Sprintf("File too large: %.2fMB. Kindle email limit is %.0fMB", sizeMB, s.maxSizeMB),
			SizeMB: sizeMB,
		}
	}

	s.sniffHeader(path, ext)
	return Validation{Valid: true, Reason: "File is valid for Kindle", SizeMB: sizeMB}
}

// Deliver validates path, requests a best-effort conversion, and mails
// the result. Conversion failure falls back to the original file; only
// a total failure (original also invalid) is surfaced. Temporary
// conversion artifacts are released on every exit path.
func (s *Sender) Deliver(ctx context.Context, path, subject string) Result {
	res := s.deliver(ctx, path, subject)
	status := "failure"
	if res.Success {
		status = "success"
	}
	metrics.Deliveries.WithLabelValues(status).Inc()
	return res
}

func (s *Sender) deliver(ctx context.Context, path, subject string) Result {
	result := Result{FilePath: path}

	validation := s.Validate(path)
	if !validation.Valid {
		result.Message = validation.Reason
		return result
	}

	if !s.credentialSet {
		result.Message = "Gmail app password not configured. Set SHELFWISE_GMAIL_APP_PASSWORD and try again."
		return result
	}

	defer s.converter.Cleanup()

	sendPath := path
	ok, convMsg, converted := s.converter.Convert(ctx, path)
	if ok && converted != "" {
		sendPath = converted
	} else {
		logger.Get().Warn().Str("file", path).Str("reason", convMsg).Msg("conversion failed, sending original")
	}

	// Conversion may have changed the size or produced something the
	// policy rejects; check what is actually being sent.
	sendValidation := s.Validate(sendPath)
	if !sendValidation.Valid && sendPath != path {
		logger.Get().Warn().Str("file", sendPath).Str("reason", sendValidation.Reason).Msg("converted file rejected, sending original")
		sendPath = path
		sendValidation = validation
	}
	if !sendValidation.Valid {
		result.Message = sendValidation.Reason
		return result
	}

	filename := filepath.Base(sendPath)
	if subject == "" {
		subject = fmt.Sprintf("Book: %s", filename)
	}
	body := fmt.Sprintf(
		"This book was sent automatically from your ebook catalog.\n\nBook: %s\nSize: %.2f MB\n\nEnjoy reading!\n",
		filename, sendValidation.SizeMB,
	)

	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()
	if err := s.transport.Send(sendCtx, s.from, s.to, subject, body, sendPath, filename); err != nil {
		result.Message = fmt.Sprintf("Failed to send email: %v", err)
		return result
	}

	result.Success = true
	result.Message = fmt.Sprintf("Successfully sent %q to Kindle (%s)", filename, s.to)
	logger.Get().Info().Str("file", filename).Str("to", s.to).Msg("book delivered")
	return result
}

// sniffHeader logs when the file's magic bytes disagree with its
// extension. Informational only; extension drives the policy.
func (s *Sender) sniffHeader(path, ext string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	head := make([]byte, headerSize)
	n, _ := f.Read(head)
	kind, err := filetype.Match(head[:n])
	if err != nil || kind == filetype.Unknown {
		return
	}
	if "."+kind.Extension != ext {
		logger.Get().Warn().
			Str("file", path).
			Str("extension", ext).
			Str("detected", kind.Extension).
			Msg("file header does not match extension")
	}
}

func (s *Sender) formatList() string {
	formats := make([]string, 0, len(s.formats))
	for f := range s.formats {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	return strings.Join(formats, ", ")
}
