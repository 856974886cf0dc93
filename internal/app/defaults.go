package app

// Default endpoints of the official distribution infrastructure. Every one of
// them can be overridden on the Service, for mirrors and for tests.
const (
	DefaultManifestURL  = "https://piston-meta.mojang.com/mc/game/version_manifest_v2.json"
	DefaultResourcesURL = "https://resources.download.minecraft.net/"
	DefaultLibrariesURL = "https://libraries.minecraft.net/"
	DefaultJVMIndexURL  = "https://launchermeta.mojang.com/v1/products/java-runtime/2ec73f1f3e604ef3255344a07aba59ec7aef2d7c/all.json"
)
