// Package parser strips comments from source files using tree-sitter.
//
// Submissions are compared on their code, not on their commentary, so
// comment nodes are located in a tree-sitter parse and blanked out before
// shingling. The grammar is chosen from the file extension; files in a
// language without a grammar are reported as unsupported and callers fall
// back to a textual stripper.
//
// Basic usage:
//
//	stripped, ok, err := parser.StripComments(ctx, "Main.java", source)
//	if err != nil {
//	    // Handle parsing error
//	}
//	if !ok {
//	    // No grammar for this extension
//	}
package parser
