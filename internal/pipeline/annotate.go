package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"dotprep/internal/annot"
	"dotprep/internal/cmdutil"
	"dotprep/internal/fasta"
	"dotprep/internal/genbank"
	"dotprep/internal/gff3"
	"dotprep/internal/index"
	"dotprep/internal/metrics"
	"dotprep/internal/output"
)

// AnnotateOptions tunes how an annotation source is read.
type AnnotateOptions struct {
	LabelKey string // qualifier or attribute used as the name; default locus_tag
	Fasta    string // assembly FASTA; supplies scaffold lengths for GFF3 sources
}

// Source formats recognised by file extension (an optional .gz is ignored).
const (
	FormatGenBank = "genbank"
	FormatGFF3    = "gff3"
)

// DetectFormat guesses the annotation format from path. Unknown extensions
// are read as GenBank.
func DetectFormat(path string) string {
	name := strings.ToLower(strings.TrimSuffix(filepath.Base(path), ".gz"))
	switch filepath.Ext(name) {
	case ".gff", ".gff3":
		return FormatGFF3
	default:
		return FormatGenBank
	}
}

// LoadScaffolds reads an annotation file into scaffolds. Query sources need
// scaffold lengths, so GFF3 input without a length for some scaffold fails
// when requireLengths is set.
func LoadScaffolds(path string, opt AnnotateOptions, requireLengths bool) ([]annot.Scaffold, error) {
	labelKey := opt.LabelKey
	if labelKey == "" {
		labelKey = genbank.DefaultLabelKey
	}
	if DetectFormat(path) == FormatGenBank {
		return genbank.Scaffolds(path, labelKey)
	}
	gopt := gff3.Options{LabelKey: labelKey, RequireLengths: requireLengths}
	if opt.Fasta != "" {
		lengths, _, err := fasta.Lengths(opt.Fasta)
		if err != nil {
			return nil, err
		}
		gopt.Lengths = lengths
	}
	return gff3.ReadFile(path, gopt)
}

// Annotate reads path and extracts reference records (isRef) or query
// records mapped through the plot orientation. Query mode requires orient.
func (p *Pipeline) Annotate(path string, isRef bool, orient index.Orientation, opt AnnotateOptions) ([]annot.Record, error) {
	return p.annotate(p.logger(), path, isRef, orient, opt)
}

func (p *Pipeline) annotate(log logrus.FieldLogger, path string, isRef bool, orient index.Orientation, opt AnnotateOptions) ([]annot.Record, error) {
	if !isRef && orient == nil {
		return nil, annot.ErrMissingOrientation
	}
	scfs, err := LoadScaffolds(path, opt, !isRef)
	if err != nil {
		return nil, err
	}
	side := "qry"
	var (
		recs []annot.Record
		st   annot.Stats
	)
	if isRef {
		side = "ref"
		recs, st = annot.ExtractRef(scfs)
	} else if recs, st, err = annot.ExtractQry(scfs, orient); err != nil {
		return nil, err
	}

	p.Metrics.AddRecords(side, len(recs))
	p.Metrics.AddSkipped(side, metrics.ReasonUnlabeled, st.Unlabeled)
	p.Metrics.AddSkipped(side, metrics.ReasonDuplicate, st.Duplicates)
	p.Metrics.AddSkipped(side, metrics.ReasonUnplotted, st.Unplotted)
	log.WithFields(logrus.Fields{
		"side":       side,
		"scaffolds":  len(scfs),
		"records":    len(recs),
		"unlabeled":  st.Unlabeled,
		"duplicates": st.Duplicates,
		"unplotted":  st.Unplotted,
	}).Debug("annotations extracted")
	if len(recs) == 0 && st.Unlabeled > 0 {
		key := opt.LabelKey
		if key == "" {
			key = genbank.DefaultLabelKey
		}
		cmdutil.Warnf(log, p.Quiet, "%s: no feature carries %q; nothing to annotate", path, key)
	}
	return recs, nil
}

// CreateAnnotations returns the formatted annotation text for path. idx is
// either index text (anything containing a newline) or an index file path;
// it is ignored in reference mode and required in query mode.
func (p *Pipeline) CreateAnnotations(path string, isRef bool, idx string, opt AnnotateOptions) (string, error) {
	var orient index.Orientation
	if !isRef {
		if idx == "" {
			return "", annot.ErrMissingOrientation
		}
		var err error
		if orient, err = index.Load(idx); err != nil {
			return "", err
		}
	}
	recs, err := p.Annotate(path, isRef, orient, opt)
	if err != nil {
		return "", err
	}
	return output.FormatAnnotations(recs, isRef), nil
}

func writeAnnotationFile(path string, recs []annot.Record, isRef bool) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := output.WriteAnnotations(fh, recs, isRef); err != nil {
		_ = fh.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return fh.Close()
}
