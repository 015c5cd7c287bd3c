// Package verba turns small verb-call DSLs into executable programs.
//
// A Grammar couples three pieces: a grammar definition (the default
// call-chain grammar, a structured spec, or raw grammar text), a verb
// registry mapping names to handlers, and an executor that runs parsed
// programs. Source text goes through parse, bind, and execute stages;
// each stage fails with a typed error carrying a stable code.
//
// The grammar in force can be exported as directive-free text for
// constrained-decoding systems, so a language model can be forced to
// emit only programs this package will accept.
package verba
