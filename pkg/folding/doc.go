/*
Package folding computes the integer permutations encoded by paper-folding
bit patterns.

Folding a strip of paper n times and reading each crease layer as a row of
bits produces an n x 2^n pattern matrix. Reading that matrix column by column
(row 1 as the most significant bit) yields one n-bit number per column; the
numbers, shifted to be 1-indexed, form a permutation of 1..2^n.

The package is pure: every function builds its result fresh from its
arguments, with no shared state and no I/O.
*/
package folding
