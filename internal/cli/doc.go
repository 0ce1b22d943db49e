// Package cli implements the reciperunner command-line surface (§6.3):
// parses flags, configures logging, and dispatches to the run/validate/
// describe/version subcommands.
//
//	reciperunner run RECIPE.yaml [--input PATH] [--var NAME=VALUE]...
//	reciperunner validate RECIPE.yaml
//	reciperunner describe [PROCESSOR_TYPE]
//	reciperunner version
//
// Grounded on cruciblehq-cruxd's internal/cli package: a kong RootCmd
// struct, one struct per subcommand, and a configureLogger step that runs
// after flag parsing so verbosity flags take effect before any subcommand
// logs.
package cli
