package imagex

import (
	"bytes"
	"fmt"
	"image"

	// Formats accepted as icons
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/m-mizutani/appdeck/pkg/domain/types"
)

// Validate checks that data holds a decodable image with a non-empty
// canvas and returns its format name
func Validate(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty image payload", types.ErrDecode)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: image payload: %w", types.ErrDecode, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return "", fmt.Errorf("%w: image has empty canvas %dx%d", types.ErrDecode, cfg.Width, cfg.Height)
	}

	return format, nil
}
