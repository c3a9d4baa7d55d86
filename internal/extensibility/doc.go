// Package extensibility holds the pluggable pieces around the interpreter:
// built-in action and guard expressions used by chart documents, literal and
// event parsing, and event sources that feed a running chart.
package extensibility
