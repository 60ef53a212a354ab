package wizard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-facecraft/pkg/models"
	"go-facecraft/pkg/validation"
)

var (
	stepStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
)

// API is the part of the FaceCraft client the wizard drives
type API interface {
	Upload(ctx context.Context, path string) (string, error)
	Generate(ctx context.Context, photoURL string, style string) (*models.GenerateResponse, error)
	Download(ctx context.Context, url string, dest string) error
}

// Runner walks a Session through upload, style, generate and download
type Runner struct {
	api       API
	validator *validation.UploadValidator
	progress  *Progress
	out       io.Writer
	Session   Session
}

// NewRunner creates a wizard that prints to out
func NewRunner(api API, progress *Progress, out io.Writer) *Runner {
	return &Runner{
		api:       api,
		validator: validation.NewUploadValidator(validation.MaxUploadSize),
		progress:  progress,
		out:       out,
	}
}

// Run performs all four steps. dest may be empty to skip the download.
func (r *Runner) Run(ctx context.Context, photoPath string, style string, dest string) error {
	r.Session.Reset()

	if err := r.Upload(ctx, photoPath); err != nil {
		return err
	}
	if err := r.SelectStyle(style); err != nil {
		return err
	}
	resp, err := r.Generate(ctx)
	if err != nil {
		return err
	}
	if resp.Description != "" {
		fmt.Fprintln(r.out, mutedStyle.Render(resp.Description))
	}
	if dest == "" {
		return nil
	}
	return r.Download(ctx, dest)
}

// Upload is step one
func (r *Runner) Upload(ctx context.Context, photoPath string) error {
	r.header(StepUpload)
	if err := Precheck(r.validator, photoPath); err != nil {
		return err
	}

	url, err := r.api.Upload(ctx, photoPath)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	r.Session.UploadedPhotoURL = url
	fmt.Fprintln(r.out, successStyle.Render("Uploaded: ")+url)
	return nil
}

// SelectStyle is step two. Styles outside the menu are allowed.
func (r *Runner) SelectStyle(style string) error {
	r.header(StepStyle)
	style = strings.TrimSpace(style)
	if style == "" {
		return errors.New("no style selected")
	}

	label := style
	if s, ok := models.FindStyle(style); ok {
		style = s.ID
		label = fmt.Sprintf("%s (%s)", s.Name, s.Description)
	}
	r.Session.SelectedStyle = style
	fmt.Fprintln(r.out, successStyle.Render("Style: ")+label)
	return nil
}

// Generate is step three
func (r *Runner) Generate(ctx context.Context) (*models.GenerateResponse, error) {
	r.header(StepGenerate)
	if r.Session.UploadedPhotoURL == "" || r.Session.SelectedStyle == "" {
		return nil, fmt.Errorf("cannot generate before step %d", r.Session.Current())
	}

	var resp *models.GenerateResponse
	err := r.progress.Track(ctx, func(ctx context.Context) error {
		var err error
		resp, err = r.api.Generate(ctx, r.Session.UploadedPhotoURL, r.Session.SelectedStyle)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	r.Session.GeneratedAvatarURL = resp.AvatarURL
	fmt.Fprintln(r.out, successStyle.Render("Avatar: ")+resp.AvatarURL)
	return resp, nil
}

// Download is step four
func (r *Runner) Download(ctx context.Context, dest string) error {
	r.header(StepDownload)
	if r.Session.GeneratedAvatarURL == "" {
		return errors.New("nothing to download yet")
	}
	if err := r.api.Download(ctx, r.Session.GeneratedAvatarURL, dest); err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	fmt.Fprintln(r.out, successStyle.Render("Saved: ")+dest)
	return nil
}

func (r *Runner) header(step Step) {
	fmt.Fprintln(r.out, stepStyle.Render(fmt.Sprintf("[%d/4] %s", step, step)))
}
