package sqlcgen

type Map struct {
	ID          int64
	Name        string
	NorthAngle  float64
	Latitude    float64
	Longitude   float64
	Description string
	Version     int64
}

type Floor struct {
	MapID       int64
	FloorNumber int32
	Label       string
	Position    int32
	Grid        []byte
}

type Node struct {
	ID          int64
	MapID       int64
	Name        string
	BeaconID    string
	FloorNumber int32
	IsExit      bool
	IsEntrance  bool
	X           int32
	Y           int32
	Area        []byte
}

type NodeWithMap struct {
	Node
	Map Map
}

type Edge struct {
	ID         int64
	MapID      int64
	FromNodeID int64
	ToNodeID   int64
	Weight     int32
	Comment    string
}
