// Package explain scrapes the explainxkcd wiki for the explanation of a
// comic. The wiki markup is not a stable contract, so parsing is best effort:
// it collects the text between the "Explanation" heading and the next
// second-level heading.
package explain
