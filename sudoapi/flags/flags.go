package flags

import "github.com/vibeworks/inkwell/internal/config"

// server
var (
	ListenHost = config.GenFlag("server.listen.host", "localhost", "Host to listen on")
	ListenPort = config.GenFlag[int]("server.listen.port", 8070, "Port to listen on")
)

// posts
var (
	RenderCacheSize = config.GenFlag[int64]("behavior.posts.render_cache_size", 2000, "Number of rendered posts kept in memory")
	PublicPageSize  = config.GenFlag[int]("behavior.posts.page_size", 20, "Default number of posts per page")
)

// uploads
var (
	ImageMaxSize = config.GenFlag[int64]("behavior.uploads.image_max_size", 10*1024*1024, "Maximum image upload size, in bytes")
)
