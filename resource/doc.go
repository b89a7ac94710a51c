// Package resource resolves localized strings from the resource bundles
// written by the autogen error-table pipeline.
//
// A bundle is a family of YAML files sharing a base name:
//
//	OrderErrorsResources.yaml          // canonical table
//	OrderErrorsResources.zh-Hans.yaml  // translation
//	OrderErrorsResources.fr.yaml       // translation
//
// Each file is a flat mapping from resource key to text. Generated accessor
// code embeds the files and calls Bundle.String, which picks the table that
// best matches the current locale (see SetLocale and CurrentLocale) and
// falls back to the canonical table.
package resource
