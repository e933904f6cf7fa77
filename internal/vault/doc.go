// Package vault stores folder keys in the operating system keychain.
//
// Each folder has a primary key indexed by its record id and a recovery
// key, a byte-identical duplicate indexed by a one-way hash of the folder's
// original absolute path. The duplicate lets recovery reconstruct a folder
// from its lock artifact alone, after the registry record is gone.
//
// Reading a key requires a valid authorization context; the vault is the
// sole authority on whether the context is still acceptable.
package vault
