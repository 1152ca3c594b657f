package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/signintech/gopdf"
	"go.uber.org/zap"

	"pharmacy-consult-sim/internal/consultation"
	"pharmacy-consult-sim/internal/simulation"
)

type TelegramClient interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendDocument(ctx context.Context, chatID int64, fileData []byte, fileName string) error
}

// DefaultFontPaths are tried in order when no font is configured.
var DefaultFontPaths = []string{
	"/usr/share/fonts/ttf-dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
}

var errNoFont = errors.New("no usable font for PDF report")

type Service struct {
	tgClient     TelegramClient
	reviewChatID int64
	fontPaths    []string
	logger       *zap.Logger
	now          func() time.Time
}

// NewService sends reports to the reviewer chat. An empty fontPath falls
// back to DefaultFontPaths.
func NewService(tg TelegramClient, reviewChatID int64, fontPath string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	paths := DefaultFontPaths
	if fontPath != "" {
		paths = []string{fontPath}
	}
	return &Service{
		tgClient:     tg,
		reviewChatID: reviewChatID,
		fontPaths:    paths,
		logger:       logger,
		now:          time.Now,
	}
}

// SendSessionReport delivers a PDF summary of a finished session. When no
// font can be loaded the same summary goes out as a plain message.
func (s *Service) SendSessionReport(ctx context.Context, c consultation.Consultation) error {
	if c.Session == nil {
		return fmt.Errorf("consultation %s has no session", c.ID)
	}
	lines := SummaryLines(c, s.now())

	doc, err := s.renderPDF(lines)
	if errors.Is(err, errNoFont) {
		s.logger.Warn("falling back to text report", zap.String("consultation_id", c.ID.String()), zap.Error(err))
		return s.tgClient.SendMessage(ctx, s.reviewChatID, strings.Join(lines, "\n"))
	}
	if err != nil {
		return err
	}

	fileName := fmt.Sprintf("consultation_%s.pdf", c.ID.String())
	if err := s.tgClient.SendDocument(ctx, s.reviewChatID, doc, fileName); err != nil {
		return fmt.Errorf("send report document: %w", err)
	}
	s.logger.Info("session report sent",
		zap.String("consultation_id", c.ID.String()),
		zap.Int64("chat_id", s.reviewChatID),
	)
	return nil
}

// SummaryLines renders the report body. The first line is the title.
func SummaryLines(c consultation.Consultation, at time.Time) []string {
	s := c.Session
	lines := []string{
		"Pharmacy consultation report",
		fmt.Sprintf("Date: %s", at.Format("02.01.2006 15:04")),
		fmt.Sprintf("Consultation: %s", c.ID),
		fmt.Sprintf("Trainee: %s", c.TraineeID),
		fmt.Sprintf("Attempt: %d", c.Playthrough.Count),
		fmt.Sprintf("Final score: %d (%s)", s.Score, simulation.GradeFor(s.Score)),
	}
	if s.Outcome != nil {
		lines = append(lines, fmt.Sprintf("Recommendation: %s, %s (%+d)", s.Outcome.Drug, s.Outcome.Severity, s.Outcome.Delta))
	} else if s.Terminated {
		lines = append(lines, "Recommendation: referred to a senior pharmacist")
	}

	lines = append(lines, "", "Discovered:")
	lines = append(lines, discoveredLines(s.Discovered)...)

	lines = append(lines, "", "Consultation record:")
	for _, e := range s.History.All() {
		line := fmt.Sprintf("[%s] %s", e.Kind, e.Text)
		if d, ok := e.Delta(); ok {
			line += fmt.Sprintf(" (%+d)", d)
		}
		lines = append(lines, line)
	}
	return lines
}

func discoveredLines(d simulation.DiscoveredInfo) []string {
	var out []string
	if d.AnticoagulantRevealed {
		out = append(out, "- Takes an anticoagulant")
	}
	if d.ProcedureRevealed {
		out = append(out, "- Has a procedure scheduled")
	}
	if d.SymptomOnset != "" {
		out = append(out, "- Onset: "+d.SymptomOnset)
	}
	if d.HeadacheHistory != "" {
		out = append(out, "- Headache history: "+d.HeadacheHistory)
	}
	if len(out) == 0 {
		out = append(out, "- Nothing")
	}
	return out
}

func (s *Service) renderPDF(lines []string) ([]byte, error) {
	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.AddPage()

	var fontErr error
	loaded := false
	for _, path := range s.fontPaths {
		if err := pdf.AddTTFFont("DejaVu", path); err != nil {
			fontErr = err
			continue
		}
		loaded = true
		break
	}
	if !loaded {
		return nil, fmt.Errorf("%w: %v", errNoFont, fontErr)
	}

	if err := pdf.SetFont("DejaVu", "", 18); err != nil {
		return nil, err
	}
	if err := pdf.Cell(nil, lines[0]); err != nil {
		return nil, err
	}
	pdf.Br(28)

	if err := pdf.SetFont("DejaVu", "", 11); err != nil {
		return nil, err
	}
	for _, line := range lines[1:] {
		if line == "" {
			pdf.Br(8)
			continue
		}
		wrapped, err := pdf.SplitText(line, 500)
		if err != nil {
			wrapped = []string{line}
		}
		for _, l := range wrapped {
			if pdf.GetY() > 800 {
				pdf.AddPage()
			}
			if err := pdf.Cell(nil, l); err != nil {
				return nil, err
			}
			pdf.Br(14)
		}
	}

	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}
