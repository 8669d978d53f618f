/*
Package ports defines the driven ports (interfaces) the SDK consumes but
does not implement.

These interfaces decouple the dispatch core from external infrastructure:
where attributes live between sessions and how platform service calls reach
the network are deployment decisions, not SDK decisions.

# Key Interfaces

  - PersistenceAdapter: stores per-user attributes across sessions, backed by
    whatever database the skill deploys with.
  - APIClient: performs HTTP exchanges for platform service clients.

RunPersistenceAdapterContract verifies third-party PersistenceAdapter
implementations against the behavior the attributes manager relies on.
*/
package ports
