package common

// DecryptErrorPlaceholder replaces a sensitive value that could not be
// decrypted on the read path.
const DecryptErrorPlaceholder = "<decrypt_error>"

// DefaultSensitivePayload is stored for freshly registered users until they
// set their own value.
const DefaultSensitivePayload = "sample-sensitive-data"

// EmptyProfileDocument is the serialized form of an empty profile.
const EmptyProfileDocument = "{}"
