// Package file persists the archive's settings in a TOML file under the
// user's .archa directory. Keys are dotted paths matching the settings
// service (embedding.provider, fragmenter.length, search.vector_weight,
// storage.data_dir); on disk they appear as TOML tables.
package file
