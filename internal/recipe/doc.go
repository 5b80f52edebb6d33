// Package recipe reads conda style recipe directories.
//
// A recipe is a directory holding a meta.yaml. The file is a Go text/template
// (with the sprig function library) followed by line selectors: a trailing
// "# [expr]" comment keeps the line only when expr evaluates to true for the
// version case being rendered.
//
//	package:
//	  name: example
//	  version: "1.0"
//	build:
//	  skip: true  # [py3k]
//	requirements:
//	  build:
//	    - python
//	    - numpy x.x
//	  run:
//	    - python
//	    - numpy x.x
//	    - futures  # [py2k]
//
// Rendering is always explicit: Render takes a Context describing the python,
// numpy, perl and r versions and the target platform, and returns an immutable
// Metadata value. OrderingRequirements reads the recipe with every selector
// line kept, which is what dependency ordering needs.
package recipe
