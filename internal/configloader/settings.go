// Package configloader resolves formatting settings from project
// configuration files: the [tool.pyfmt] table of pyproject.toml or a
// standalone .pyfmt.yaml. Command line flags always win over files.
package configloader

// Settings mirrors the command line surface that may also be configured
// per project. Pointer fields distinguish "not set" from zero values so
// merging never clobbers an explicit flag.
type Settings struct {
	LineLength               *int     `toml:"line-length" yaml:"line-length"`
	TargetVersions           []string `toml:"target-version" yaml:"target-version"`
	Pyi                      *bool    `toml:"pyi" yaml:"pyi"`
	Ipynb                    *bool    `toml:"ipynb" yaml:"ipynb"`
	SkipStringNormalization  *bool    `toml:"skip-string-normalization" yaml:"skip-string-normalization"`
	SkipMagicTrailingComma   *bool    `toml:"skip-magic-trailing-comma" yaml:"skip-magic-trailing-comma"`
	Preview                  *bool    `toml:"preview" yaml:"preview"`
	Fast                     *bool    `toml:"fast" yaml:"fast"`
	Workers                  *int     `toml:"workers" yaml:"workers"`
	Include                  *string  `toml:"include" yaml:"include"`
	Exclude                  *string  `toml:"exclude" yaml:"exclude"`
	ExtendExclude            *string  `toml:"extend-exclude" yaml:"extend-exclude"`
	ForceExclude             *string  `toml:"force-exclude" yaml:"force-exclude"`
	PythonCellMagics         []string `toml:"python-cell-magics" yaml:"python-cell-magics"`
	RequiredVersion          *string  `toml:"required-version" yaml:"required-version"`
}
