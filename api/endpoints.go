package api

// Endpoint paths. Unlike a single-resource JSON API, cdxserver's routes are
// parameterised by collection name, so these are mux patterns rather than
// the donor's flat APIEndpoint constants.
const (
	// AEHome is the / endpoint.
	AEHome = "/"
	// AEHealth is the service health check endpoint.
	AEHealth = "/health"
	// AECollections lists every known collection.
	AECollections = "/api/collections"

	// AECollection is a collection's query/ingest/stats root.
	AECollection = "/{col}"
	// AECollectionDelete ingests deletion lines.
	AECollectionDelete = "/{col}/delete"
	// AECollectionStats reports estimated record counts.
	AECollectionStats = "/{col}/stats"
	// AECollectionCaptures dumps raw capture records.
	AECollectionCaptures = "/{col}/captures"
	// AECollectionAliases dumps raw alias records.
	AECollectionAliases = "/{col}/aliases"
	// AECollectionSequence reports the latest WAL sequence number.
	AECollectionSequence = "/{col}/sequence"
	// AECollectionChanges streams the replication feed.
	AECollectionChanges = "/{col}/changes"
	// AECollectionTruncateReplication flushes the WAL.
	AECollectionTruncateReplication = "/{col}/truncate_replication"

	// AEAccessRules is access rule CRUD.
	AEAccessRules = "/{col}/access/rules"
	// AEAccessRule is a single access rule by id.
	AEAccessRule = "/{col}/access/rules/{id}"
	// AEAccessPolicies is access policy CRUD.
	AEAccessPolicies = "/{col}/access/policies"
	// AEAccessPolicy is a single access policy by id.
	AEAccessPolicy = "/{col}/access/policies/{id}"
	// AEAccessCheck evaluates access at an access point.
	AEAccessCheck = "/{col}/ap/{ap}/check"
)
