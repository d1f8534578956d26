package index

var (
	bPaths    = []byte("paths")    // kind + 0x00 + value -> seq
	bManifest = []byte("manifest") // seq -> entry json, enumeration order
	bBuild    = []byte("build")    // build facts
)

var (
	kFallback = []byte("fallback")
	kBuiltAt  = []byte("built_at")
)
