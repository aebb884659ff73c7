// Package tabclean cleans tabular data files according to a declarative
// YAML definition.
//
// A definition maps every output column onto one source column and an
// ordered chain of transforms (text normalization, pattern removal and
// extraction, date parsing, type casts, splitting, re-encoding). After the
// columns are built, quality rules resolve duplicate keys and replace values
// outside an allowed catalog, and a report counts what was found.
//
// # Quick Start
//
//	mappings:
//	  cliente:
//	    source: Nombre Cliente
//	    transforms:
//	      - normalize_text
//	  codigo:
//	    source: Referencia
//	    transforms:
//	      - name: regex_extract
//	        pattern: 'REF-(\d+)'
//	        as_type: int
//	quality:
//	  duplicates:
//	    key: codigo
//	    action: drop
//	output:
//	  format: xlsx
//
//	tabclean run -c limpieza.yaml -i clientes.xlsx
//
// # Packages
//
//   - pkg/table: the in-memory table and its nullable cells
//   - pkg/transform: the transform catalog
//   - pkg/mapping: compiles mappings and builds output tables
//   - pkg/quality: duplicate and allowed-value rules, the quality report
//   - pkg/config: YAML loading and validation
//   - pkg/connector: CSV and XLSX readers; CSV, XLSX, JSON and Avro writers
//   - internal/pipeline: batch orchestration used by cmd/tabclean
package tabclean
