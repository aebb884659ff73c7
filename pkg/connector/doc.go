// Package connector groups the file connectors that move tables in and out
// of tabclean.
//
// # Architecture Overview
//
//   - core: the Source and Destination interfaces.
//   - registry: factories keyed by name, plus a catalog describing which file
//     extensions each connector handles. Connectors self-register in init.
//   - sources: CSV (plain or gzip, any character set, delimiter detection)
//     and XLSX readers. Import the sources package to register all of them.
//   - destinations: CSV, XLSX, JSON, JSON Lines and Avro writers. Import the
//     destinations package to register all of them. Every writer goes through
//     destinations/compressed, which replaces the target file atomically and
//     compresses output whose name ends in ".gz", ".zst" or ".lz4".
//
// Sources read whole files: tables are held in memory.
package connector
