/*
The sync package implements the agentsync reconciliation algorithm. It
keeps the agent's view of each tracked file current by reconciling three
independent copies of the file's content:

 1. The persistent copy on disk.
 2. The live editor buffer, if one is open for the file.
 3. The remote view -- the last content actually delivered to the agent.

A reconciliation pass (SyncAll) fans out one reconciliation per tracked
file, collects the per-file outcomes into a path-keyed map, and advances
the registry's remote view only for files that reconciled successfully.
Each file resolves independently: a conflict, I/O failure, or extraction
failure on one file never aborts the others.

For text files with an open buffer, the buffer is authoritative unless the
disk copy changed underneath it. If both the buffer and the disk changed
since the last sync, the content is ambiguous and the file is reported as
conflicted without touching the remote view. Binary and PDF files are
compared by modification time only; PDFs are delivered as extracted text
and other binaries as base64-encoded bytes.

Passes are serialized: a SyncAll call blocks until any in-flight pass
completes, so at most one outcome is produced per file per pass.
*/
package sync
