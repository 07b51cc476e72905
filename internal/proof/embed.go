package proof

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	qrcode "github.com/skip2/go-qrcode"

	"vishwaspatra/internal/integrity"
)

const (
	metaTitle   = "Blockchain Verified Certificate"
	metaSubject = "VishwasPatra Authentic Certificate"
	metaProduce = "VishwasPatra DApp"
	metaCreator = "Meta Realm | TON + IPFS"

	qrCaption = "Verify at VishwasPatra"

	// QR is rendered at 360px and scaled to a quarter, landing at ~90pt in
	// the bottom-right corner of the last page.
	qrPixels    = 360
	qrStampDesc = "position:br, offset:-40 40, scalefactor:0.25 abs, rotation:0"
	captionDesc = "fontname:Helvetica, points:10, scalefactor:1 abs, position:br, offset:-36 26, rotation:0, fillcolor:#1a1a1a, opacity:1"
)

// Issuer carries the display fields written into the document metadata.
type Issuer struct {
	CollegeFullName string
}

// Embed writes the proof into the document's Info dictionary and stamps a
// verification QR code onto the last page. The rendered content is otherwise
// unchanged. Metadata is written before stamping; the watermark pass rewrites
// the whole file and keeps the Info dictionary intact, while the reverse order
// leaves dangling object references behind. Returns the new document bytes.
func Embed(pdf []byte, hash, verifyBaseURL string, issuer Issuer) ([]byte, error) {
	conf := newConfiguration()

	if _, err := api.ReadContext(bytes.NewReader(pdf), conf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbed, err)
	}

	withProof, err := writeProofMetadata(pdf, hash, issuer, conf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbed, err)
	}

	out, err := stampQR(withProof, hash, verifyBaseURL, conf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbed, err)
	}
	return out, nil
}

func newConfiguration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

func stampQR(pdf []byte, hash, verifyBaseURL string, conf *model.Configuration) ([]byte, error) {
	png, err := qrcode.Encode(VerifyLink(verifyBaseURL, hash), qrcode.Medium, qrPixels)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}

	// pdfcpu's image watermark API is file based.
	tmp, err := os.CreateTemp("", "vp-qr-*.png")
	if err != nil {
		return nil, fmt.Errorf("failed to create QR temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(png); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to write QR temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to close QR temp file: %w", err)
	}

	qrStamp, err := api.ImageWatermark(tmp.Name(), qrStampDesc, true, false, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("failed to build QR stamp: %w", err)
	}

	var stamped bytes.Buffer
	if err := api.AddWatermarks(bytes.NewReader(pdf), &stamped, []string{"l"}, qrStamp, conf); err != nil {
		return nil, fmt.Errorf("failed to stamp QR code: %w", err)
	}

	caption, err := api.TextWatermark(qrCaption, captionDesc, true, false, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("failed to build caption stamp: %w", err)
	}

	var out bytes.Buffer
	if err := api.AddWatermarks(bytes.NewReader(stamped.Bytes()), &out, []string{"l"}, caption, conf); err != nil {
		return nil, fmt.Errorf("failed to stamp caption: %w", err)
	}
	return out.Bytes(), nil
}

func writeProofMetadata(pdf []byte, hash string, issuer Issuer, conf *model.Configuration) ([]byte, error) {
	ctx, err := api.ReadContext(bytes.NewReader(pdf), conf)
	if err != nil {
		return nil, err
	}

	d, err := infoDict(ctx)
	if err != nil {
		return nil, err
	}

	author := issuer.CollegeFullName
	if author == "" {
		author = "VishwasPatra"
	}

	blob, err := json.Marshal(Proof{CompositeHash: hash, Version: integrity.Version})
	if err != nil {
		return nil, err
	}

	d["Title"] = types.NewHexLiteral([]byte(metaTitle))
	d["Author"] = types.NewHexLiteral([]byte(author))
	d["Subject"] = types.NewHexLiteral([]byte(metaSubject))
	d["Producer"] = types.NewHexLiteral([]byte(metaProduce))
	d["Creator"] = types.NewHexLiteral([]byte(metaCreator))
	d["Keywords"] = types.NewHexLiteral(blob)

	// WriteContext expects an optimized xref table; writing without this step
	// can emit references to objects that never get serialized.
	if err := api.OptimizeContext(ctx); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err := api.WriteContext(ctx, &out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// infoDict returns the document's Info dictionary, creating one when absent.
func infoDict(ctx *model.Context) (types.Dict, error) {
	if ctx.Info != nil {
		d, err := ctx.DereferenceDict(*ctx.Info)
		if err == nil && d != nil {
			return d, nil
		}
	}

	d := types.Dict{}
	ir, err := ctx.IndRefForNewObject(d)
	if err != nil {
		return nil, err
	}
	ctx.Info = ir
	return d, nil
}
