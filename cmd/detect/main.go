// Command detect runs a YOLOv5 ONNX model over image files and reports,
// draws and optionally stores the detections.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/nvr-ai/go-yolov5/config"
	"github.com/nvr-ai/go-yolov5/detector"
	"github.com/nvr-ai/go-yolov5/inference"
	"github.com/nvr-ai/go-yolov5/inference/providers"
	"github.com/nvr-ai/go-yolov5/logger"
	"github.com/nvr-ai/go-yolov5/models"
	"github.com/nvr-ai/go-yolov5/models/model"
	"github.com/nvr-ai/go-yolov5/models/postprocess"
	"github.com/nvr-ai/go-yolov5/profiler"
	"github.com/nvr-ai/go-yolov5/store"
	"github.com/nvr-ai/go-yolov5/util"
	"go.uber.org/zap"
)

func main() {
	var (
		configPath string
		outputDir  string
		draw       bool
		batchSize  int
	)
	flag.StringVar(&configPath, "config", "", "Path to the YAML configuration file")
	flag.StringVar(&outputDir, "output-dir", "", "Directory for annotated images (overrides draw.outputdir)")
	flag.BoolVar(&draw, "draw", false, "Write annotated images")
	flag.IntVar(&batchSize, "batch", 0, "Images per engine call (overrides detection.batchsize)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <image or directory>...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if outputDir != "" {
		cfg.Draw.OutputDir = outputDir
	}
	if draw {
		cfg.Draw.Enabled = true
	}
	if batchSize > 0 {
		cfg.Detection.BatchSize = batchSize
	}

	log := logger.New(cfg.Log.Debug)
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, flag.Args(), log); err != nil {
		log.Error("detect failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.AppConfig, paths []string, log *zap.Logger) error {
	files, err := util.LoadImageFiles(paths...)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no images found in %s", strings.Join(paths, ", "))
	}
	log.Info("images loaded", zap.Int("count", len(files)))

	engineCfg := cfg.Engine()
	if engineCfg.Provider.SharedLibraryPath == "" {
		engineCfg.Provider.SharedLibraryPath = providers.GetSharedLibPath()
	}
	defer func() {
		if err := providers.DestroyEnvironment(); err != nil {
			log.Warn("onnxruntime environment not destroyed", zap.Error(err))
		}
	}()
	engine, err := inference.NewONNXEngine(engineCfg, log)
	if err != nil {
		return err
	}
	defer engine.Close()

	prof := profiler.New(0)
	colors := detector.NewColorCache(cfg.Draw.Seed)
	det, err := detector.New(engine, cfg.Detector(),
		detector.WithLogger(log),
		detector.WithColorCache(colors),
		detector.WithProfiler(prof),
	)
	if err != nil {
		return err
	}

	if err := det.WarmUp(ctx, cfg.Detection.WarmUp); err != nil {
		return err
	}

	var repo *store.BatchRepository
	if cfg.Store.Path != "" {
		db, err := store.New(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer db.Close()
		repo = db.Batches()
	}

	labels := models.NewLabelSet(cfg.Labels)
	drawOpts := detector.DrawOptions{
		Labels:    labels,
		Cache:     colors,
		Thickness: cfg.Draw.Thickness,
	}

	total := 0
	for _, chunk := range chunks(files, cfg.Detection.BatchSize) {
		imgs := make([]image.Image, len(chunk))
		inputs := make([]detector.Input, len(chunk))
		for i, f := range chunk {
			img, err := f.Decode()
			if err != nil {
				return err
			}
			imgs[i] = img
			inputs[i] = detector.Input{ID: uuid.NewString(), Image: img}
		}

		start := time.Now()
		batch, err := det.Detect(ctx, inputs...)
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		for i, res := range batch.Results() {
			log.Info("detections",
				zap.String("file", chunk[i].Path),
				zap.Int("count", len(res)),
				zap.Strings("classes", classNames(res, labels)),
			)
		}
		total += batch.Count()

		if repo != nil {
			record := toRecord(batch, chunk, imgs, labels, cfg, elapsed)
			if err := repo.Save(ctx, record); err != nil {
				return err
			}
		}

		if cfg.Draw.Enabled {
			for i, out := range detector.DrawBatch(imgs, batch, drawOpts) {
				path := filepath.Join(cfg.Draw.OutputDir, chunk[i].Name()+"."+extension(cfg.Draw.Format))
				if err := util.SaveImage(path, out); err != nil {
					return err
				}
				log.Debug("annotated image written", zap.String("path", path))
			}
		}
	}

	log.Info("done", zap.Int("images", len(files)), zap.Int("detections", total))
	prof.LogReport(log)
	return nil
}

// chunks splits files into batches of at most size. Zero or less means one.
func chunks(files []util.ImageFile, size int) [][]util.ImageFile {
	if size <= 0 {
		size = 1
	}
	var out [][]util.ImageFile
	for start := 0; start < len(files); start += size {
		end := start + size
		if end > len(files) {
			end = len(files)
		}
		out = append(out, files[start:end])
	}
	return out
}

func classNames(results []postprocess.Result, labels *models.LabelSet) []string {
	names := make([]string, len(results))
	for i, r := range results {
		names[i] = labels.Name(r.Class)
	}
	return names
}

func toRecord(
	batch detector.Batch,
	files []util.ImageFile,
	imgs []image.Image,
	labels *models.LabelSet,
	cfg *config.AppConfig,
	elapsed time.Duration,
) *store.Batch {
	record := &store.Batch{
		ID:         uuid.NewString(),
		Model:      string(model.ModelNameYOLOv5),
		Confidence: cfg.Detection.Confidence,
		IoU:        cfg.Detection.IoU,
		Duration:   elapsed,
		Images:     make([]store.Image, len(batch)),
	}
	for i, res := range batch {
		b := imgs[i].Bounds()
		img := store.Image{
			ID:         res.ID,
			Source:     files[i].Path,
			Width:      b.Dx(),
			Height:     b.Dy(),
			Detections: make([]store.Detection, len(res.Results)),
		}
		for j, r := range res.Results {
			img.Detections[j] = store.Detection{Result: r, Label: labels.Name(r.Class)}
		}
		record.Images[i] = img
	}
	return record
}

func extension(format string) string {
	switch strings.ToLower(format) {
	case "png":
		return "png"
	case "webp":
		return "webp"
	default:
		return "jpg"
	}
}
