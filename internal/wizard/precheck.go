package wizard

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"go-facecraft/internal/client"
	apperrors "go-facecraft/internal/errors"
	"go-facecraft/pkg/validation"
)

// Precheck mirrors the server's upload rules before anything is sent. It is
// advisory only; the server repeats every check.
func Precheck(validator *validation.UploadValidator, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("open photo: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}

	contentType, err := client.DetectContentType(path)
	if err != nil {
		return err
	}
	if err := validator.Validate(true, contentType, info.Size()); err != nil {
		return fmt.Errorf("%s (%s, %s)", apperrors.PublicMessage(err, err.Error()), contentType, humanize.IBytes(uint64(info.Size())))
	}
	return nil
}
