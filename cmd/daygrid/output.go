package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"daygrid/internal/capture"
	"daygrid/internal/config"
	"daygrid/internal/convert"
	appLog "daygrid/internal/log"
	"daygrid/internal/pipeline"
	"daygrid/internal/web"
)

const (
	svgFile    = "day.svg"
	layoutFile = "layout.json"
	epaperFile = "preview-epaper.png"
)

// outputs writes rendered artifacts to cfg.OutputDir.
type outputs struct {
	cfg  *config.Config
	png  bool
	dump bool
}

func (o outputs) write(ctx context.Context, res *pipeline.Result) error {
	dir := o.cfg.OutputDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	svg := res.SVG(o.cfg)
	if err := writeFileAtomic(filepath.Join(dir, svgFile), []byte(svg)); err != nil {
		return err
	}

	if o.dump {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return err
		}
		if err := writeFileAtomic(filepath.Join(dir, layoutFile), data); err != nil {
			return err
		}
	}

	if o.png {
		pngPath := filepath.Join(dir, web.PreviewFile)
		if err := capturePNG(ctx, o.cfg, res.Layout.Height, svg, pngPath); err != nil {
			return err
		}
		if o.cfg.EPaper {
			if err := writeEPaper(pngPath, filepath.Join(dir, epaperFile)); err != nil {
				return err
			}
		}
	}

	appLog.Info("outputs written", "dir", dir, "png", o.png, "dump", o.dump)
	return nil
}

// capturePNG serves svg on a private loopback listener and screenshots it.
// The main server may sit behind basic auth, which Chromium cannot answer.
func capturePNG(ctx context.Context, cfg *config.Config, height int, svg, path string) error {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("capture listener: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/"+svgFile, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write([]byte(svg))
	})
	srv := &http.Server{Handler: mux}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Error("capture server failed", err)
		}
	}()
	defer srv.Close()

	return capture.CaptureDayPNG(ctx, capture.CaptureOptions{
		URL:        "http://" + ln.Addr().String() + "/" + svgFile,
		OutputPath: path,
		Width:      cfg.Width,
		Height:     height,
	})
}

func writeEPaper(pngPath, outPath string) error {
	data, err := os.ReadFile(pngPath)
	if err != nil {
		return err
	}
	packed, err := convert.QuantizePNG(data, convert.DefaultThreshold)
	if err != nil {
		return err
	}
	return writeFileAtomic(outPath, packed)
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".daygrid-out-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
