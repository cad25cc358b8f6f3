/*
Package log provides global output control across hostresolve. Logging comes in four
levels: Silent, Major, Minor and Debug, each level more detailed than the previous. Levels
are inclusive, so, e.g., if MinorLevel is set that implies MajorLevel logging.

The Print and Printf style functions are similar to the fmt versions with two differences:
if the resulting string contains multiple lines they are all printed with the prefix for
the logging level, and a trailing newline is not needed as excess ones are trimmed.

All functions are safe for concurrent use as the coordinator logs from whichever go-routine
completes a lookup.

Output not controlled by levels, such as command usage, should still go to log.Out() so
tests can capture it.
*/
package log
