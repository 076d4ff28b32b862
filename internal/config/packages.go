package config

// Packages is the fixed, ordered list of tracked npm packages. It is part of
// the build, not runtime input: adding a package means committing a change
// here together with a seeded series file for it.
var Packages = []string{
	"react",
	"react-dom",
	"vue",
	"@angular/core",
	"svelte",
	"solid-js",
	"preact",
	"@mui/material",
	"antd",
	"bootstrap",
	"tailwindcss",
	"styled-components",
	"lodash",
	"axios",
	"express",
	"next",
	"nuxt",
	"typescript",
	"webpack",
	"vite",
	"esbuild",
	"rollup",
	"eslint",
	"prettier",
	"jest",
	"vitest",
}
