/*
Package ports defines the driven ports (interfaces) of the turning runtime.

These interfaces decouple test generation and execution from the systems
under test, the console and persistence.

# Key Interfaces

  - Environment: lifecycle of the shared system under test (setup, teardown, before, after, afterEach).
  - Reporter: console rendering of test cases, steps and failures.
  - ReportStore: persistence of run reports, enabling re-runs of failed test cases.
  - Locker: mutual exclusion of runs sharing one environment across processes.
*/
package ports
