package fixtures

import (
	"bytes"
	"crypto/ed25519"

	"github.com/spruceid/rebase-sub001/principal/ed25519/signer"
	"github.com/spruceid/rebase-sub001/principal/ethereum"
	"github.com/spruceid/rebase-sub001/principal/tezos"
)

// did:key:z6Mkk89bC3JrVqKie71YEcc5M1SMVxuCgNx6zLZ8SYJsxALi
var Alice, _ = signer.Parse("MgCZT5vOnYZoVAeyjnzuJIVY9J4LNtJ+f8Js0cTPuKUpFne0BVEDJjEu6quFIU8yp91/TY/+MYK8GvlKoTDnqOCovCVM=")

// did:key:z6MkffDZCkCTWreg8868fG1FGFogcJj5X6PY93pPcWDn9bob
var Bob, _ = signer.Parse("MgCYbj5AJfVvdrjkjNCxB3iAUwx7RQHVQ7H1sKyHy46Iose0BEevXgL1V73PD9snOCIoONgb+yQ9sycYchQC8kygR4qY=")

// did:key:z6MktafZTREjJkvV5mfJxcLpNBoVPwDLhTuMg9ng7dY4zMAL
var Mallory, _ = signer.Parse("MgCYtH0AvYxiQwBG6+ZXcwlXywq9tI50G2mCAUJbwrrahkO0B0elFYkl3Ulf3Q3A/EvcVY0utb4etiSE8e6pi4H0FEmU=")

// did:key:z6MkrZ1r5XBFZjBU34qyD8fueMbMRkKw17BZaq2ivKFjnz2z
var Service, _ = signer.Parse("MgCYKXoHVy7Vk4/QjcEGi+MCqjntUiasxXJ8uJKY0qh11e+0Bs8WsdqGK7xothgrDzzWD0ME7ynPjz2okXDh8537lId8=")

// 0x2c7536E3605D9C16a7a3D7b1898e529396a65c23
var Carol, _ = ethereum.Parse("0x4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318")

var Dave, _ = tezos.FromRaw(ed25519.NewKeyFromSeed(bytes.Repeat([]byte{0x07}, ed25519.SeedSize)))
