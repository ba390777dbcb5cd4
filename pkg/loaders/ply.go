package loaders

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/df07/go-mis-pathtracer/pkg/core"
	"github.com/df07/go-mis-pathtracer/pkg/geometry"
	"github.com/df07/go-mis-pathtracer/pkg/log"
)

var logger = log.New("loaders")

// ErrMalformedPLY is returned for files that do not follow the PLY layout
var ErrMalformedPLY = errors.New("malformed PLY")

const (
	// maxPolygonVertices bounds the vertex list of a single face
	maxPolygonVertices = 1 << 16
	// maxPreallocated caps slice capacity taken from header element counts
	maxPreallocated = 1 << 20
)

// plyHeader is the parsed header of a PLY file
type plyHeader struct {
	Format      string // "ascii", "binary_little_endian" or "binary_big_endian"
	VertexCount int
	FaceCount   int
	VertexProps []plyProperty
	FaceProps   []plyProperty
	// Position of x, y and z within VertexProps
	PositionIndices [3]int
}

// plyProperty is a property declaration in the header
type plyProperty struct {
	Name     string
	Type     string
	IsList   bool
	ListType string // type of the count for list properties
}

// Mesh is an indexed triangle mesh
type Mesh struct {
	Vertices []core.Vec3
	Faces    [][3]int
}

// LoadPLY reads a triangle mesh from a PLY file
func LoadPLY(filename string) (*Mesh, error) {
	startTime := time.Now()

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("while opening PLY file: %w", err)
	}
	defer file.Close()

	mesh, err := ReadPLY(file)
	if err != nil {
		return nil, fmt.Errorf("while reading %s: %w", filename, err)
	}

	logger.Infof("loaded %s: %d vertices, %d triangles in %v",
		filename, len(mesh.Vertices), len(mesh.Faces), time.Since(startTime))
	return mesh, nil
}

// ReadPLY parses a PLY stream. Only vertex positions and the face
// vertex index lists are kept; polygons are triangulated as fans.
func ReadPLY(r io.Reader) (*Mesh, error) {
	reader := bufio.NewReader(r)

	header, err := parsePLYHeader(reader)
	if err != nil {
		return nil, err
	}

	var mesh *Mesh
	switch header.Format {
	case "ascii":
		mesh, err = readASCII(reader, header)
	case "binary_little_endian":
		mesh, err = readBinary(reader, header, binary.LittleEndian)
	case "binary_big_endian":
		mesh, err = readBinary(reader, header, binary.BigEndian)
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", ErrMalformedPLY, header.Format)
	}
	if err != nil {
		return nil, err
	}

	for i, face := range mesh.Faces {
		for _, idx := range face {
			if idx < 0 || idx >= len(mesh.Vertices) {
				return nil, fmt.Errorf("%w: face %d references vertex %d of %d", ErrMalformedPLY, i, idx, len(mesh.Vertices))
			}
		}
	}
	return mesh, nil
}

func parsePLYHeader(reader *bufio.Reader) (*plyHeader, error) {
	header := &plyHeader{PositionIndices: [3]int{-1, -1, -1}}

	magic, err := reader.ReadString('\n')
	if err != nil || strings.TrimSpace(magic) != "ply" {
		return nil, fmt.Errorf("%w: missing ply magic", ErrMalformedPLY)
	}

	var currentElement string
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("%w: header not terminated", ErrMalformedPLY)
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "end_header":
			for i, idx := range header.PositionIndices {
				if idx < 0 {
					return nil, fmt.Errorf("%w: vertex property %q missing", ErrMalformedPLY, "xyz"[i:i+1])
				}
			}
			return header, nil
		case "comment", "obj_info":
		case "format":
			if len(parts) < 2 {
				return nil, fmt.Errorf("%w: %q", ErrMalformedPLY, strings.TrimSpace(line))
			}
			header.Format = parts[1]
		case "element":
			if len(parts) < 3 {
				return nil, fmt.Errorf("%w: %q", ErrMalformedPLY, strings.TrimSpace(line))
			}
			count, err := strconv.Atoi(parts[2])
			if err != nil || count < 0 {
				return nil, fmt.Errorf("%w: bad element count %q", ErrMalformedPLY, parts[2])
			}
			currentElement = parts[1]
			switch currentElement {
			case "vertex":
				header.VertexCount = count
			case "face":
				header.FaceCount = count
			default:
				if count > 0 {
					return nil, fmt.Errorf("%w: unsupported element %q", ErrMalformedPLY, currentElement)
				}
			}
		case "property":
			prop, err := parsePLYProperty(parts)
			if err != nil {
				return nil, err
			}
			switch currentElement {
			case "vertex":
				switch prop.Name {
				case "x":
					header.PositionIndices[0] = len(header.VertexProps)
				case "y":
					header.PositionIndices[1] = len(header.VertexProps)
				case "z":
					header.PositionIndices[2] = len(header.VertexProps)
				}
				header.VertexProps = append(header.VertexProps, prop)
			case "face":
				header.FaceProps = append(header.FaceProps, prop)
			}
		default:
			return nil, fmt.Errorf("%w: unknown header keyword %q", ErrMalformedPLY, parts[0])
		}
	}
}

func parsePLYProperty(parts []string) (plyProperty, error) {
	if len(parts) >= 5 && parts[1] == "list" {
		if typeSize(parts[2]) == 0 || typeSize(parts[3]) == 0 {
			return plyProperty{}, fmt.Errorf("%w: bad list property %v", ErrMalformedPLY, parts)
		}
		return plyProperty{Name: parts[4], Type: parts[3], IsList: true, ListType: parts[2]}, nil
	}
	if len(parts) >= 3 && typeSize(parts[1]) > 0 {
		return plyProperty{Name: parts[2], Type: parts[1]}, nil
	}
	return plyProperty{}, fmt.Errorf("%w: bad property %v", ErrMalformedPLY, parts)
}

// typeSize returns the byte size of a scalar type, or 0 if it is unknown
func typeSize(dataType string) int {
	switch dataType {
	case "char", "uchar", "int8", "uint8":
		return 1
	case "short", "ushort", "int16", "uint16":
		return 2
	case "int", "uint", "float", "int32", "uint32", "float32":
		return 4
	case "double", "float64":
		return 8
	}
	return 0
}

// polygonSize validates a face vertex count read from the file
func polygonSize(count float64) (int, error) {
	if math.IsNaN(count) || count < 0 || count > maxPolygonVertices || count != math.Trunc(count) {
		return 0, fmt.Errorf("%w: bad face vertex count %v", ErrMalformedPLY, count)
	}
	return int(count), nil
}

// triangulate splits a polygon into a fan around its first vertex
func triangulate(faces [][3]int, polygon []int) [][3]int {
	for i := 1; i+1 < len(polygon); i++ {
		faces = append(faces, [3]int{polygon[0], polygon[i], polygon[i+1]})
	}
	return faces
}

func readASCII(reader *bufio.Reader, header *plyHeader) (*Mesh, error) {
	scanner := bufio.NewScanner(reader)
	scanner.Split(bufio.ScanWords)
	next := func() (float64, error) {
		if !scanner.Scan() {
			return 0, fmt.Errorf("%w: unexpected end of data", ErrMalformedPLY)
		}
		v, err := strconv.ParseFloat(scanner.Text(), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrMalformedPLY, err)
		}
		return v, nil
	}

	mesh := &Mesh{Vertices: make([]core.Vec3, 0, min(header.VertexCount, maxPreallocated))}
	values := make([]float64, len(header.VertexProps))
	for i := 0; i < header.VertexCount; i++ {
		for p, prop := range header.VertexProps {
			if prop.IsList {
				return nil, fmt.Errorf("%w: list vertex property %q", ErrMalformedPLY, prop.Name)
			}
			v, err := next()
			if err != nil {
				return nil, err
			}
			values[p] = v
		}
		mesh.Vertices = append(mesh.Vertices, positionOf(values, header))
	}

	for i := 0; i < header.FaceCount; i++ {
		for _, prop := range header.FaceProps {
			if !prop.IsList {
				if _, err := next(); err != nil {
					return nil, err
				}
				continue
			}
			count, err := next()
			if err != nil {
				return nil, err
			}
			size, err := polygonSize(count)
			if err != nil {
				return nil, err
			}
			polygon := make([]int, size)
			for j := range polygon {
				v, err := next()
				if err != nil {
					return nil, err
				}
				polygon[j] = int(v)
			}
			if isIndexList(prop) {
				mesh.Faces = triangulate(mesh.Faces, polygon)
			}
		}
	}
	return mesh, nil
}

func readBinary(reader *bufio.Reader, header *plyHeader, order binary.ByteOrder) (*Mesh, error) {
	var buf [8]byte
	read := func(dataType string) (float64, error) {
		size := typeSize(dataType)
		if _, err := io.ReadFull(reader, buf[:size]); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrMalformedPLY, err)
		}
		b := buf[:size]
		switch dataType {
		case "char", "int8":
			return float64(int8(b[0])), nil
		case "uchar", "uint8":
			return float64(b[0]), nil
		case "short", "int16":
			return float64(int16(order.Uint16(b))), nil
		case "ushort", "uint16":
			return float64(order.Uint16(b)), nil
		case "int", "int32":
			return float64(int32(order.Uint32(b))), nil
		case "uint", "uint32":
			return float64(order.Uint32(b)), nil
		case "float", "float32":
			return float64(math.Float32frombits(order.Uint32(b))), nil
		default:
			return math.Float64frombits(order.Uint64(b)), nil
		}
	}

	mesh := &Mesh{Vertices: make([]core.Vec3, 0, min(header.VertexCount, maxPreallocated))}
	values := make([]float64, len(header.VertexProps))
	for i := 0; i < header.VertexCount; i++ {
		for p, prop := range header.VertexProps {
			if prop.IsList {
				return nil, fmt.Errorf("%w: list vertex property %q", ErrMalformedPLY, prop.Name)
			}
			v, err := read(prop.Type)
			if err != nil {
				return nil, err
			}
			values[p] = v
		}
		mesh.Vertices = append(mesh.Vertices, positionOf(values, header))
	}

	for i := 0; i < header.FaceCount; i++ {
		for _, prop := range header.FaceProps {
			if !prop.IsList {
				if _, err := read(prop.Type); err != nil {
					return nil, err
				}
				continue
			}
			count, err := read(prop.ListType)
			if err != nil {
				return nil, err
			}
			size, err := polygonSize(count)
			if err != nil {
				return nil, err
			}
			polygon := make([]int, size)
			for j := range polygon {
				v, err := read(prop.Type)
				if err != nil {
					return nil, err
				}
				polygon[j] = int(v)
			}
			if isIndexList(prop) {
				mesh.Faces = triangulate(mesh.Faces, polygon)
			}
		}
	}
	return mesh, nil
}

func positionOf(values []float64, header *plyHeader) core.Vec3 {
	idx := header.PositionIndices
	return core.NewVec3(values[idx[0]], values[idx[1]], values[idx[2]])
}

func isIndexList(prop plyProperty) bool {
	return prop.Name == "vertex_indices" || prop.Name == "vertex_index"
}

// Bounds returns the box around all vertices
func (m *Mesh) Bounds() core.AABB {
	return core.NewAABBFromPoints(m.Vertices...)
}

// Fit uniformly scales and translates the mesh so its bounding box is
// centered at center with its largest side equal to size.
func (m *Mesh) Fit(center core.Vec3, size float64) {
	if len(m.Vertices) == 0 {
		return
	}
	bounds := m.Bounds()
	extent := bounds.Max.Subtract(bounds.Min)
	largest := math.Max(extent.X, math.Max(extent.Y, extent.Z))
	if largest <= 0 {
		return
	}
	scale := size / largest
	mid := bounds.Min.Add(bounds.Max).Multiply(0.5)
	for i, v := range m.Vertices {
		m.Vertices[i] = v.Subtract(mid).Multiply(scale).Add(center)
	}
}

// Triangles builds the mesh faces, skipping degenerate ones
func (m *Mesh) Triangles() []*geometry.Triangle {
	triangles := make([]*geometry.Triangle, 0, len(m.Faces))
	skipped := 0
	for _, f := range m.Faces {
		t := geometry.NewTriangle(m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]])
		if t.Area() <= 0 {
			skipped++
			continue
		}
		triangles = append(triangles, t)
	}
	if skipped > 0 {
		logger.Debugf("skipped %d degenerate triangles", skipped)
	}
	return triangles
}
