package domain

// KeyPrefix is the storage key namespace, set from config at startup.
var KeyPrefix = "dxd:"
