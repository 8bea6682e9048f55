package registrypb

import "objrepo/pkg/registry"

// FromObject converts a registry object to its wire form. LastSeen is local
// state and is not transmitted.
func FromObject(o registry.Object) *ObjectInfo {
	return &ObjectInfo{
		ObjectName:    o.Name,
		ObjectAddress: o.Address,
		Language:      o.Language,
		Version:       o.Version,
		Region:        o.Region,
	}
}

// ToObject converts the wire form to a registry object.
func (x *ObjectInfo) ToObject() registry.Object {
	if x == nil {
		return registry.Object{}
	}
	return registry.Object{
		Name:     x.ObjectName,
		Address:  x.ObjectAddress,
		Language: x.Language,
		Version:  x.Version,
		Region:   x.Region,
	}
}

func (x *RegisterRequest) ToObject() registry.Object {
	return registry.Object{
		Name:     x.ObjectName,
		Address:  x.ObjectAddress,
		Language: x.Language,
		Version:  x.Version,
		Region:   x.Region,
	}
}

func (x *UpdateRequest) ToObject() registry.Object {
	return registry.Object{
		Name:     x.ObjectName,
		Address:  x.ObjectAddress,
		Language: x.Language,
		Version:  x.Version,
		Region:   x.Region,
	}
}

// NewObjectList builds a list message, as used by ListObjects and SyncState.
func NewObjectList(objs []registry.Object) *ObjectListResponse {
	out := &ObjectListResponse{Objects: make([]*ObjectInfo, 0, len(objs))}
	for _, o := range objs {
		out.Objects = append(out.Objects, FromObject(o))
	}
	return out
}

// ToObjects converts every entry of the list, skipping nil entries.
func (x *ObjectListResponse) ToObjects() []registry.Object {
	if x == nil {
		return nil
	}
	out := make([]registry.Object, 0, len(x.Objects))
	for _, o := range x.Objects {
		if o == nil {
			continue
		}
		out = append(out, o.ToObject())
	}
	return out
}
