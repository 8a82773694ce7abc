/*
Package domain contains the core models of the turning test generator.

It defines the declared graph (states, initialize nodes, turn and spawn
transitions), the search output (flat paths and the assembled path forest),
run reports and the error taxonomy. The package is pure: no I/O, no
persistence, no handler execution.

# Key Entities

  - Node: an initialize, turn or spawn declaration, frozen by the builder.
  - Model: every declaration of a suite in declaration order.
  - Path: a flat sequence of steps produced by the search engine.
  - PathStart / PathTurn: the path forest replayed by the runtime.
  - Report: the persisted outcome of one test run.
*/
package domain
