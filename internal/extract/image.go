package extract

import (
	"github.com/JaimeStill/document-context/pkg/document"
	"github.com/JaimeStill/document-context/pkg/encoding"
)

func imageDataURI(data []byte, ext string) (string, error) {
	format := document.PNG
	if ext == ".jpg" || ext == ".jpeg" {
		format = document.JPEG
	}
	return encoding.EncodeImageDataURI(data, format)
}
