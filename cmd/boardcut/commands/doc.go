// Package commands defines the boardcut CLI and wires dependencies for subcommands.
//
// Commands
//
//   - optimize   Pack a request file or cut list and print the layout summary
//   - compare    Pack with every split rule and show the figures side by side
//   - get        Print a cached result by hash
//   - recent     List recently computed hashes
//   - export     Write a cached result as PDF, labels, DXF or Excel
//   - config     Show, initialize, back up or restore the configuration
//   - catalog    List or import the material catalog
//
// # Implementation
//
// The root command loads the config file, applies flag overrides and builds
// the logger, metrics registry, cache store and service before any
// subcommand runs. Without a Redis URL results are cached in process only,
// so get and recent need Redis to see results from earlier runs.
package commands
