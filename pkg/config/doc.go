// Package config loads and validates tabclean pipeline definitions.
//
// A pipeline is described in a single YAML document:
//
//	input_files: [data/]
//	input:
//	  delimiter: ""        # sniffed when empty
//	  encoding: utf-8
//	mappings:
//	  nombre:
//	    source: Nombre Cliente
//	    transforms:
//	      - name: normalize_text
//	      - name: remove_pattern
//	        pattern: '\bsa\b'
//	  codigo:
//	    source: Codigo
//	    transforms:
//	      - name: regex_extract
//	        pattern: '(\d+)'
//	        as_type: int
//	quality:
//	  duplicates:
//	    key: codigo
//	    action: keep_latest
//	    latest_by: fecha
//	  allowed_values:
//	    estado: [activo, inactivo]
//	output:
//	  format: xlsx
//	  dir: ${OUTPUT_DIR:-out}
//
// The order of "mappings" is the order of the output columns, and the order
// of "allowed_values" is the order in which the rules run; both are kept as
// written. Environment variables are substituted with ${VAR_NAME} or
// ${VAR_NAME:-default} before the document is parsed.
//
// Load applies defaults and runs Validate, which checks structure only. The
// transform names and parameters are checked when the mappings are compiled
// into an engine, which also happens before any data is read.
package config
