// package repositories provides the SQLite-backed genre cache.
//
// Artist genre lookups are expensive relative to their churn, so resolved
// genres are kept in the artists table and reused across runs. GenreCache
// layers an in-memory map on top and falls through to the remote catalog
// only on a true miss.
package repositories
