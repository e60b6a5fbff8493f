// Package loader reads the two identifier tables (gene name to genomic id,
// genomic id to protein id) from disk.
//
// Supported formats are detected from the file content and extension:
//
//   - a Python dict literal on one or more lines: {'TP53': 'ENSG00000141510.16', ...}
//   - a YAML mapping (.yaml, .yml)
//   - two-column TSV or CSV, with an optional header row
//   - GENCODE "gene_id (gene_name)" lines as written by the Ensembl update job
package loader
