package pipeline

import (
	"fmt"
	"io"

	"github.com/ajitpratap0/tabclean/pkg/errors"
	jsonpool "github.com/ajitpratap0/tabclean/pkg/json"
)

// Report formats.
const (
	ReportText = "text"
	ReportJSON = "json"
)

// WriteReport writes the summary of a run in the given format.
func WriteReport(w io.Writer, s *Summary, format string) error {
	switch format {
	case ReportJSON:
		data, err := jsonpool.MarshalIndent(s, "", "  ")
		if err != nil {
			return errors.Wrap(err, errors.ErrorTypeInternal, "failed to encode report")
		}
		_, err = w.Write(append(data, '\n'))
		return err
	case ReportText, "":
		return writeTextReport(w, s)
	default:
		return errors.Newf(errors.ErrorTypeConfig, "unknown report format %q", format)
	}
}

func writeTextReport(w io.Writer, s *Summary) error {
	for i, f := range s.Files {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if f.err != nil || f.Report == nil {
			if _, err := fmt.Fprintf(w, "Error procesando %s: %s\n", f.Input, f.Error); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, "Archivo generado: %s\n\n", f.Output); err != nil {
			return err
		}
		if err := f.Report.RenderText(w); err != nil {
			return err
		}
	}
	if len(s.Files) > 1 {
		_, err := fmt.Fprintf(w, "\nArchivos procesados: %d, con error: %d\n", s.Succeeded(), s.Failed)
		return err
	}
	return nil
}
