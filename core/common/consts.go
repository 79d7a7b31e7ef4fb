package common

const (
	FieldContent       = "text"
	FieldContentVector = "vector"
	FieldMetadata      = "metadata"
	DocumentId         = "document_id"

	// chunk metadata keys
	MetaParentId   = "parent_id"
	MetaChunkSize  = "chunk_size"
	MetaChunkIndex = "chunk_index"
	MetaSource     = "_source"

	Title1 = "h1"
	Title2 = "h2"
	Title3 = "h3"
)
