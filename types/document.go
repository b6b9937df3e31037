package types

// IngestResult summarizes a single ingest call
type IngestResult struct {
	DocumentID    string
	ChunksCreated int
	TextLength    int
}

// ChunkerConfig contains the splitter parameters
type ChunkerConfig struct {
	ChunkSize    int // Maximum chunk length in characters
	ChunkOverlap int // Characters shared between neighbouring chunks
}
