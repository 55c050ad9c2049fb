// Package media trata o upload de logo das barbearias: normaliza a
// imagem para WebP com tamanho máximo fixo e envia para um bucket
// compatível com S3.
package media

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/chai2010/webp"
	"golang.org/x/image/draw"
)

const (
	maxLogoDimension = 512
	webpQuality      = 82
	maxUploadBytes   = 5 << 20
)

// NormalizeLogo decodifica qualquer formato suportado, redimensiona
// mantendo proporção e reencoda em WebP.
func NormalizeLogo(r io.Reader) ([]byte, error) {
	src, _, err := image.Decode(io.LimitReader(r, maxUploadBytes))
	if err != nil {
		return nil, fmt.Errorf("imagem inválida: %w", err)
	}

	src = resizeToFit(src, maxLogoDimension)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, src, &webp.Options{Quality: webpQuality}); err != nil {
		return nil, fmt.Errorf("falha ao converter para webp: %w", err)
	}
	return buf.Bytes(), nil
}

func resizeToFit(src image.Image, max int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= max && h <= max {
		return src
	}

	if w >= h {
		h = h * max / w
		w = max
	} else {
		w = w * max / h
		h = max
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
