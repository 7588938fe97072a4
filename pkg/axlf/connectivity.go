package axlf

// Connection binds kernel argument ArgIndex of the IP at IPLayoutIndex to the
// memory bank at MemDataIndex.
type Connection struct {
	ArgIndex      int32
	IPLayoutIndex int32
	MemDataIndex  int32
}

// Connectivity is the CONNECTIVITY payload.
type Connectivity struct {
	Connections Array[Connection]
}

func (*Connectivity) Kind() SectionKind { return SectionConnectivity }
func (*Connectivity) isPayload()        {}

const connectionSize = 12

var connectivityLayout = arrayLayout{countWidth: 4, signed: true, dataOffset: 4, width: connectionSize}

// DecodeConnectivity interprets a CONNECTIVITY payload.
func (c Codec) DecodeConnectivity(data []byte) (*Connectivity, error) {
	raw, n, err := c.records(data, connectivityLayout)
	if err != nil {
		return nil, err
	}
	return &Connectivity{Connections: newArray(raw, n, connectionSize, c.decodeConnection)}, nil
}

func (c Codec) decodeConnection(b []byte) Connection {
	r := c.cursorAt(b, 0)
	return Connection{
		ArgIndex:      r.i32(),
		IPLayoutIndex: r.i32(),
		MemDataIndex:  r.i32(),
	}
}

// EncodeConnectivity builds a CONNECTIVITY payload.
func (c Codec) EncodeConnectivity(conns []Connection) ([]byte, error) {
	p := c.newPutter(connectivityLayout.dataOffset + len(conns)*connectionSize)
	p.putCount(connectivityLayout, len(conns))
	for _, conn := range conns {
		p.i32(conn.ArgIndex)
		p.i32(conn.IPLayoutIndex)
		p.i32(conn.MemDataIndex)
	}
	return p.bytes()
}
