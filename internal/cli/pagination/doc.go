// Package pagination provides CLI windowing and re-sorting for ranked country tables.
//
//   - PaginationParams: --limit/--offset or --page/--page-size flag parsing and validation
//   - Apply: selects the requested window of any slice
//   - CountrySorter: re-sorts country rows by name, total, an energy type or category subtotal
//   - PaginationMeta: page summary printed under a table
package pagination
