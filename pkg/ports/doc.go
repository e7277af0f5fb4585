/*
Package ports defines the driven ports (interfaces) for the rewind engine.

These interfaces decouple the history service from its storage backends and
transports.

# Key Interfaces

  - SessionStore: Responsible for persisting and loading session timelines.
  - DistributedLocker: Provides distributed locking for concurrent session access.
  - HistoryService: What transports (HTTP, MCP, CLI) drive.
*/
package ports
