// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package unit defines the code unit handle and the runtime that turns a
// byte payload into one.
//
// A Runtime is the "define" primitive of the system: it receives a symbolic
// name and a payload and either returns a callable Unit or a
// *DefinitionError describing why the payload could not be linked.
//
// The default runtime compiles HCL unit manifests:
//
//	unit "greeter.Hello" {
//	  description = "Says hello"
//
//	  input "name" {
//	    type    = string
//	    default = "world"
//	  }
//
//	  exports {
//	    greeting = "Hello, ${input.name}!"
//	  }
//	}
//
// Every export is an expression evaluated on each Call against the bound
// inputs and a fixed library of go-cty stdlib functions. Unknown references
// and unknown functions are rejected when the unit is defined, not when it
// is called, so a unit is either fully defined or not defined at all.
package unit
