package core

import (
	modrinthApi "codeberg.org/jmansfield/go-modrinth/modrinth"
)

// SideSupport is a Modrinth client_side / server_side value. A missing value is treated as SideUnspecified.
type SideSupport string

const (
	SideRequired    SideSupport = "required"
	SideOptional    SideSupport = "optional"
	SideUnsupported SideSupport = "unsupported"
	SideUnspecified SideSupport = "unspecified"
)

func sideOf(v *string) SideSupport {
	if v == nil || *v == "" {
		return SideUnspecified
	}
	return SideSupport(*v)
}

// ServerSupport is the outcome of classifying a project for a dedicated server.
type ServerSupport string

const (
	ServerRequired    ServerSupport = "required"
	ServerOptional    ServerSupport = "optional"
	ServerUnsupported ServerSupport = "unsupported"
	ServerUnknown     ServerSupport = "unknown"
)

// Included reports whether a mod with this classification belongs in the server build.
func (s ServerSupport) Included() bool {
	return s == ServerRequired || s == ServerOptional
}

// Classify maps project metadata to a server support level. A nil project means no
// metadata could be resolved.
func Classify(project *modrinthApi.Project) ServerSupport {
	if project == nil {
		return ServerUnknown
	}

	server := sideOf(project.ServerSide)
	client := sideOf(project.ClientSide)

	switch server {
	case SideRequired:
		return ServerRequired
	case SideOptional:
		return ServerOptional
	case SideUnsupported:
		return ServerUnsupported
	}

	// explicit client requirement with no server posture reads as client-only
	if client == SideRequired && server == SideUnspecified {
		return ServerUnsupported
	}

	return ServerOptional
}
