/*
Package markov provides a SQLite-backed toolkit for building first-order word
Markov chains from a text corpus and sampling sentences from them.

A corpus is read as one continuous sequence of whitespace-separated words.
Training records how often every word occurs and how often each word is
followed by each other word. Those counts back a word frequency report, the
row-normalised transition matrix, and a sampler that picks the next word with
a temperature-adjusted probability distribution.

Several models can share one database; the vocabulary table is shared between
them while word and transition counts are kept per model.
*/
package markov
