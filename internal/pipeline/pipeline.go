package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"dotprep/internal/blob"
	"dotprep/internal/convert"
	"dotprep/internal/coords"
	"dotprep/internal/index"
	"dotprep/internal/metrics"
	"dotprep/internal/nucmer"
)

// ErrPrecondition marks failures detected before any tool runs. It is the
// aligner's sentinel, so one errors.Is check covers both layers.
var ErrPrecondition = nucmer.ErrPrecondition

// Fixed artifact names inside the output directory.
const (
	CoordsFile         = "out" + convert.CoordsSuffix
	IndexFile          = "out" + convert.IndexSuffix
	RefAnnotationsFile = "out.ref.annotations"
	QryAnnotationsFile = "out.qry.annotations"

	DefaultMinCluster = 65
)

// Stage names used in logs and metrics.
const (
	StageAlign       = "align"
	StageConvert     = "convert"
	StageValidate    = "validate"
	StageAnnotateRef = "annotate_ref"
	StageAnnotateQry = "annotate_qry"
	StagePublish     = "publish"
)

// Pipeline wires the collaborators of one or more runs. Metrics may be nil.
type Pipeline struct {
	Aligner   Aligner
	Converter convert.Converter
	Log       logrus.FieldLogger
	Metrics   *metrics.Recorder
	Quiet     bool
}

// Options describes one directory-mode run.
type Options struct {
	OutDir     string
	RefFasta   string
	QryFasta   string
	MinCluster int // <=0 means DefaultMinCluster

	RefAnnotations string // optional GenBank or GFF3 file
	QryAnnotations string
	LabelKey       string

	Publish string // optional blob URL, see blob.Open
}

// Result lists what a run produced.
type Result struct {
	RunID     string
	OutDir    string
	Files     []string // artifact names relative to OutDir, in production order
	Published []blob.Info
}

func (p *Pipeline) logger() logrus.FieldLogger {
	if p.Log == nil {
		return logrus.StandardLogger()
	}
	return p.Log
}

// Run executes directory mode. The output directory must not exist yet.
// On failure the partially filled directory is left in place.
func (p *Pipeline) Run(ctx context.Context, opt Options) (res Result, err error) {
	res = Result{RunID: uuid.NewString(), OutDir: opt.OutDir}
	log := p.logger().WithField("run_id", res.RunID)
	defer func() { p.Metrics.RunFinished(err) }()

	if opt.OutDir == "" {
		return res, fmt.Errorf("%w: output directory not set", ErrPrecondition)
	}
	if _, serr := os.Stat(opt.OutDir); serr == nil {
		return res, fmt.Errorf("%w: output directory already exists: %s", ErrPrecondition, opt.OutDir)
	} else if !errors.Is(serr, fs.ErrNotExist) {
		return res, serr
	}
	if err := checkInputs(opt.RefFasta, opt.QryFasta); err != nil {
		return res, err
	}
	if err := os.MkdirAll(opt.OutDir, 0o755); err != nil {
		return res, err
	}
	log.WithField("outdir", opt.OutDir).Info("output directory created")

	out, err := p.produce(ctx, log, opt.OutDir, opt.RefFasta, opt.QryFasta, opt.MinCluster)
	if err != nil {
		return res, err
	}
	res.Files = append(res.Files, filepath.Base(out.delta), filepath.Base(out.coordsPath), filepath.Base(out.indexPath))

	sides := []struct {
		src, fasta, file, stage string
		isRef                   bool
	}{
		{opt.RefAnnotations, opt.RefFasta, RefAnnotationsFile, StageAnnotateRef, true},
		{opt.QryAnnotations, opt.QryFasta, QryAnnotationsFile, StageAnnotateQry, false},
	}
	for _, s := range sides {
		if s.src == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}
		dst := filepath.Join(opt.OutDir, s.file)
		log.WithFields(logrus.Fields{"stage": s.stage, "source": s.src, "out": dst}).Info("writing annotations")
		stop := p.Metrics.Time(s.stage)
		var orient index.Orientation
		if !s.isRef {
			if orient, err = index.ParseOrientation(out.indexText); err != nil {
				stop()
				return res, fmt.Errorf("%s: %w", out.indexPath, err)
			}
		}
		recs, err := p.annotate(log, s.src, s.isRef, orient, AnnotateOptions{LabelKey: opt.LabelKey, Fasta: s.fasta})
		if err == nil {
			err = writeAnnotationFile(dst, recs, s.isRef)
		}
		stop()
		if err != nil {
			return res, err
		}
		res.Files = append(res.Files, s.file)
	}

	if opt.Publish != "" {
		stop := p.Metrics.Time(StagePublish)
		res.Published, err = publish(ctx, log, opt.Publish, opt.OutDir, res.Files, res.RunID)
		stop()
		if err != nil {
			return res, err
		}
	}
	log.WithField("files", len(res.Files)).Info("done")
	return res, nil
}

// Prepare executes ephemeral mode: the same alignment and conversion in a
// scratch directory that is removed afterwards. It returns the coords and
// index text.
func (p *Pipeline) Prepare(ctx context.Context, fastaRef, fastaQry string, minCluster int) (coordsText, indexText string, err error) {
	defer func() { p.Metrics.RunFinished(err) }()
	if err := checkInputs(fastaRef, fastaQry); err != nil {
		return "", "", err
	}
	workdir, err := os.MkdirTemp("", "dotprep-*")
	if err != nil {
		return "", "", err
	}
	defer os.RemoveAll(workdir)

	log := p.logger().WithField("run_id", uuid.NewString())
	out, err := p.produce(ctx, log, workdir, fastaRef, fastaQry, minCluster)
	if err != nil {
		return "", "", err
	}
	return out.coordsText, out.indexText, nil
}

type produced struct {
	delta, coordsPath, indexPath string
	coordsText, indexText        string
}

// produce runs align, convert and validate inside workdir.
func (p *Pipeline) produce(ctx context.Context, log logrus.FieldLogger, workdir, fastaRef, fastaQry string, minCluster int) (produced, error) {
	var out produced
	if minCluster <= 0 {
		minCluster = DefaultMinCluster
	}

	log.WithFields(logrus.Fields{"stage": StageAlign, "ref": fastaRef, "qry": fastaQry, "mincluster": minCluster}).Info("aligning")
	stop := p.Metrics.Time(StageAlign)
	delta, err := p.Aligner.Align(ctx, fastaRef, fastaQry, workdir, []nucmer.Arg{{Key: "--mincluster", Value: strconv.Itoa(minCluster)}})
	stop()
	if err != nil {
		return out, fmt.Errorf("align: %w", err)
	}
	out.delta = delta

	log.WithFields(logrus.Fields{"stage": StageConvert, "delta": delta}).Info("converting delta")
	stop = p.Metrics.Time(StageConvert)
	out.coordsPath, out.indexPath, err = p.Converter.Convert(ctx, delta, filepath.Join(workdir, "out"))
	stop()
	if err != nil {
		return out, fmt.Errorf("convert: %w", err)
	}

	log.WithFields(logrus.Fields{"stage": StageValidate, "coords": out.coordsPath, "index": out.indexPath}).Debug("validating outputs")
	stop = p.Metrics.Time(StageValidate)
	defer stop()
	if out.coordsText, err = readText(out.coordsPath); err != nil {
		return out, err
	}
	if out.indexText, err = readText(out.indexPath); err != nil {
		return out, err
	}
	if err := coords.Validate(out.coordsText); err != nil {
		return out, err
	}
	if err := coords.CheckHeader("index", out.indexText, index.Header); err != nil {
		return out, err
	}
	return out, nil
}

func checkInputs(paths ...string) error {
	for _, p := range paths {
		st, err := os.Stat(p)
		if p == "" || err != nil || !st.Mode().IsRegular() {
			return fmt.Errorf("%w: file does not exist: %s", ErrPrecondition, p)
		}
	}
	return nil
}

func readText(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func publish(ctx context.Context, log logrus.FieldLogger, url, dir string, names []string, runID string) ([]blob.Info, error) {
	st, prefix, err := blob.Open(ctx, url)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{"stage": StagePublish, "url": url, "driver": st.Driver()}).Info("publishing artifacts")
	return blob.Publish(ctx, st, prefix, dir, names, map[string]string{"run_id": runID})
}
