package clipboard

import (
	"errors"
	"sync"

	"golang.design/x/clipboard"
)

var (
	initOnce sync.Once
	initErr  error
)

// ErrEmpty is returned when the clipboard holds no text.
var ErrEmpty = errors.New("clipboard holds no text")

func Init() error {
	initOnce.Do(func() {
		initErr = clipboard.Init()
	})
	return initErr
}

// ReadText returns the current text contents of the system clipboard.
func ReadText() (string, error) {
	if err := Init(); err != nil {
		return "", err
	}
	data := clipboard.Read(clipboard.FmtText)
	if len(data) == 0 {
		return "", ErrEmpty
	}
	return string(data), nil
}
