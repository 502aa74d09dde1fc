/*
The sync package implements treesync's reconciliation algorithm. It takes two
scan indexes, one for the source tree and one for the destination tree, and
applies whatever filesystem changes are needed to make the destination match
the source.

Reconciliation happens in two phases:

1) Delete -- Destination entries that don't exist in the source are removed.
   The destination index is iterated in stored (post-order) order, so a
   removed subtree is deleted leaf-first and each directory is already empty
   by the time its own deletion is attempted.

2) Create/update -- Source entries are created in, or copied over, the
   destination. The source index is iterated in reverse stored order, which
   yields parents before children, so directories exist before anything is
   written into them.

A failure while applying one entry is recorded in the run's report and never
aborts the run. There is no rollback: a run that fails partway leaves the
destination reflecting whichever operations succeeded.
*/
package sync
