package validators

import (
	"bytes"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailValidator(t *testing.T) {
	assert.NoError(t, EmailValidator("alice@example.com"))
	assert.ErrorIs(t, EmailValidator(""), ErrEmailEmpty)
	assert.ErrorIs(t, EmailValidator("not-an-email"), ErrEmailInvalid)
	assert.ErrorIs(t, EmailValidator("@example.com"), ErrEmailInvalid)
	assert.ErrorIs(t, EmailValidator(strings.Repeat("a", 250)+"@example.com"), ErrEmailTooLong)
}

func TestPasswordValidator(t *testing.T) {
	assert.NoError(t, PasswordValidator("hunter22"))
	assert.ErrorIs(t, PasswordValidator(""), ErrPasswordEmpty)
	assert.ErrorIs(t, PasswordValidator("short"), ErrPasswordTooShort)
	assert.ErrorIs(t, PasswordValidator(strings.Repeat("a", 129)), ErrPasswordTooLong)
	assert.NoError(t, PasswordValidator(strings.Repeat("a", 128)))
}

func TestImageValidator(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, image.NewRGBA(image.Rect(0, 0, 16, 9))))

	width, height, mime, err := ImageValidator(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 16, width)
	assert.Equal(t, 9, height)
	assert.Equal(t, "image/png", mime)

	_, _, _, err = ImageValidator(nil)
	assert.ErrorIs(t, err, ErrImageEmpty)

	_, _, _, err = ImageValidator([]byte("not an image at all"))
	assert.ErrorIs(t, err, ErrImageInvalid)
}
