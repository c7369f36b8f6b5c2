// Package textutil provides text processing for identity labels: cleaning
// social-media noise out of track labels, sanitizing filesystem names, and
// scoring pairwise label similarity.
//
// Similarity uses a token-set comparison so word order and partial subset
// containment are tolerated ("A - X" vs "X (Official) - A" still agree). The
// production scorer ranks the token-set permutations with Levenshtein-based
// string similarity; an exact-match scorer exists for environments where the
// fuzzy dependency is unwanted.
package textutil
