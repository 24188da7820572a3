package resolve

// WithInstalled sets the predicate telling whether a package is
// already installed locally.
func WithInstalled(f func(string) bool) Option {
	return func(r *Resolver) { r.installed = f }
}

// WithCache sets where previously built packages are kept and how
// their file names are formed.
func WithCache(dir, arch, ext string) Option {
	return func(r *Resolver) {
		r.cacheDir = dir
		r.arch = arch
		r.pkgExt = ext
	}
}

// WithForce disables reuse of cached builds.
func WithForce(b bool) Option {
	return func(r *Resolver) { r.force = b }
}

// WithFileCheck replaces the function used to test whether a cached
// build exists.
func WithFileCheck(f func(string) bool) Option {
	return func(r *Resolver) { r.exists = f }
}
